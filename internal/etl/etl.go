// Package etl ingests sales CSV exports into the engine's DuckDB database.
// File formats are detected by column signature, normalized into a unified
// sales_data table plus stock_data and pricing_data, and enriched with time
// dimensions. Loading happens once at startup; the resolution loop only
// reads the registered tables.
package etl

import (
	"fmt"
	"time"
)

// Format identifies a recognized CSV export format.
type Format string

const (
	FormatAmazon        Format = "amazon"
	FormatInternational Format = "international"
	FormatStock         Format = "stock"
	FormatPricing       Format = "pricing"
	FormatUnknown       Format = "unknown"
)

// Date formats accepted for international sales files. The source data is
// ambiguous: a value like 06-05-21 reads as either day-first or month-first.
// The loader does not guess; callers pick the interpretation explicitly.
const (
	DateFormatMMDDYY = "MM-DD-YY"
	DateFormatDDMMYY = "DD-MM-YY"
)

// amazonDateLayout matches the Amazon export's month-first dates (04-30-22).
const amazonDateLayout = "01-02-06"

func dateLayout(format string) (string, error) {
	switch format {
	case DateFormatMMDDYY:
		return "01-02-06", nil
	case DateFormatDDMMYY:
		return "02-01-06", nil
	default:
		return "", fmt.Errorf("unknown date format %q (want %s or %s)", format, DateFormatMMDDYY, DateFormatDDMMYY)
	}
}

// DetectFormat identifies a file's format from its header row.
func DetectFormat(header []string) Format {
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[h] = true
	}
	switch {
	case cols["Order ID"] && cols["Fulfilment"]:
		return FormatAmazon
	case cols["GROSS AMT"] && cols["PCS"]:
		return FormatInternational
	case cols["Stock"] && cols["SKU Code"]:
		return FormatStock
	case cols["Amazon MRP"] && cols["TP"]:
		return FormatPricing
	default:
		return FormatUnknown
	}
}

// salesRow is a normalized sales record. Optional fields are pointers so
// absent values land as SQL NULLs, not empty strings.
type salesRow struct {
	Date     *time.Time
	OrderID  string
	SKU      string
	Qty      int64
	Amount   float64
	City     *string
	State    *string
	Country  *string
	Category *string
	Size     *string
	Status   *string
	Source   string
}

type stockRow struct {
	SKU      string
	StyleID  string
	Category *string
	Size     *string
	Color    *string
	Stock    int64
}

type pricingRow struct {
	SKU         string
	StyleID     string
	Category    *string
	TP          *float64
	AmazonMRP   *float64
	FlipkartMRP *float64
	AjioMRP     *float64
}
