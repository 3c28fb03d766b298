package etl

import (
	"strconv"
	"strings"
	"time"
)

// record is one CSV row with access by header name.
type record struct {
	cols   map[string]int
	fields []string
}

func (r record) get(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r record) getPtr(name string) *string {
	v := r.get(name)
	if v == "" {
		return nil
	}
	return &v
}

// parseAmount coerces a currency field to a float. Thousands separators are
// stripped; unparseable values coerce to 0, matching how the source data
// treats blank amounts on cancelled orders.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some exports write counts as "1.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return v
}

// parseDate parses with the given layout; failures coerce to nil (NULL).
func parseDate(s, layout string) *time.Time {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

func transformAmazon(r record) salesRow {
	country := r.getPtr("ship-country")
	return salesRow{
		Date:     parseDate(r.get("Date"), amazonDateLayout),
		OrderID:  r.get("Order ID"),
		SKU:      r.get("SKU"),
		Qty:      parseCount(r.get("Qty")),
		Amount:   parseAmount(r.get("Amount")),
		City:     r.getPtr("ship-city"),
		State:    r.getPtr("ship-state"),
		Country:  country,
		Category: r.getPtr("Category"),
		Size:     r.getPtr("Size"),
		Status:   r.getPtr("Status"),
		Source:   "Amazon",
	}
}

// transformInternational normalizes the international export. The file has
// no order id, category, or location columns; status defaults to Delivered
// since the export only contains completed sales.
func transformInternational(r record, dateLayout string, rowIndex int) salesRow {
	country := "International"
	status := "Delivered"
	return salesRow{
		Date:     parseDate(r.get("DATE"), dateLayout),
		OrderID:  strconv.Itoa(rowIndex),
		SKU:      r.get("Style"),
		Qty:      parseCount(r.get("PCS")),
		Amount:   parseAmount(r.get("GROSS AMT")),
		Country:  &country,
		Size:     r.getPtr("Size"),
		Status:   &status,
		Source:   "International",
	}
}

func transformStock(r record) stockRow {
	return stockRow{
		SKU:      r.get("SKU Code"),
		StyleID:  r.get("Design No."),
		Category: r.getPtr("Category"),
		Size:     r.getPtr("Size"),
		Color:    r.getPtr("Color"),
		Stock:    parseCount(r.get("Stock")),
	}
}

func transformPricing(r record) pricingRow {
	return pricingRow{
		SKU:         r.get("Sku"),
		StyleID:     r.get("Style Id"),
		Category:    r.getPtr("Category"),
		TP:          parsePrice(r.get("TP")),
		AmazonMRP:   parsePrice(r.get("Amazon MRP")),
		FlipkartMRP: parsePrice(r.get("Flipkart MRP")),
		AjioMRP:     parsePrice(r.get("Ajio MRP")),
	}
}

// parsePrice is like parseAmount but keeps unparseable values as NULL
// instead of coercing to 0: a missing list price is absent, not free.
func parsePrice(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
