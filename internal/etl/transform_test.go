package etl

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func newRecord(header, fields []string) record {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return record{cols: cols, fields: fields}
}

func TestTransformAmazon(t *testing.T) {
	t.Parallel()

	header := []string{"Order ID", "Date", "Status", "SKU", "Category", "Size", "Qty", "Amount", "ship-city", "ship-state", "ship-country"}

	t.Run("complete row", func(t *testing.T) {
		t.Parallel()
		got := transformAmazon(newRecord(header, []string{
			"405-8078784-5731545", "04-30-22", "Shipped", "SET389-KR-NP-S", "Set", "S", "1", "647.62", "MUMBAI", "MAHARASHTRA", "IN",
		}))

		want := salesRow{
			Date:     datePtr(2022, time.April, 30),
			OrderID:  "405-8078784-5731545",
			SKU:      "SET389-KR-NP-S",
			Qty:      1,
			Amount:   647.62,
			City:     strPtr("MUMBAI"),
			State:    strPtr("MAHARASHTRA"),
			Country:  strPtr("IN"),
			Category: strPtr("Set"),
			Size:     strPtr("S"),
			Status:   strPtr("Shipped"),
			Source:   "Amazon",
		}
		require.Empty(t, cmp.Diff(want, got))
	})

	t.Run("blank optionals become nil, blank amount becomes zero", func(t *testing.T) {
		t.Parallel()
		got := transformAmazon(newRecord(header, []string{
			"171-9198151-1101146", "not-a-date", "Cancelled", "JNE3781-KR-XXXL", "", "", "0", "", "", "", "",
		}))

		want := salesRow{
			OrderID: "171-9198151-1101146",
			SKU:     "JNE3781-KR-XXXL",
			Status:  strPtr("Cancelled"),
			Source:  "Amazon",
		}
		require.Empty(t, cmp.Diff(want, got))
	})
}

func TestTransformInternational(t *testing.T) {
	t.Parallel()

	header := []string{"DATE", "Style", "SKU", "Size", "PCS", "RATE", "GROSS AMT"}
	fields := []string{"06-05-21", "MEN5004", "MEN5004-KR-L", "L", "2", "616", "1,232"}

	t.Run("month-first interpretation", func(t *testing.T) {
		t.Parallel()
		got := transformInternational(newRecord(header, fields), "01-02-06", 7)

		want := salesRow{
			Date:    datePtr(2021, time.June, 5),
			OrderID: "7",
			SKU:     "MEN5004",
			Qty:     2,
			Amount:  1232,
			Country: strPtr("International"),
			Size:    strPtr("L"),
			Status:  strPtr("Delivered"),
			Source:  "International",
		}
		require.Empty(t, cmp.Diff(want, got))
	})

	t.Run("day-first interpretation flips the date", func(t *testing.T) {
		t.Parallel()
		got := transformInternational(newRecord(header, fields), "02-01-06", 0)
		require.Equal(t, datePtr(2021, time.May, 6), got.Date)
	})
}

func TestTransformPricing(t *testing.T) {
	t.Parallel()

	header := []string{"Sku", "Style Id", "Category", "TP", "Amazon MRP", "Flipkart MRP", "Ajio MRP"}
	got := transformPricing(newRecord(header, []string{
		"Os206_3141_L", "Os206_3141", "Kurta Set", "538", "2,295", "", "n/a",
	}))

	tp := 538.0
	amazonMRP := 2295.0
	want := pricingRow{
		SKU:       "Os206_3141_L",
		StyleID:   "Os206_3141",
		Category:  strPtr("Kurta Set"),
		TP:        &tp,
		AmazonMRP: &amazonMRP,
	}
	require.Empty(t, cmp.Diff(want, got))
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	t.Run("parseAmount", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, 1198.0, parseAmount("1,198.00"))
		require.Equal(t, 0.0, parseAmount(""))
		require.Equal(t, 0.0, parseAmount("n/a"))
	})

	t.Run("parseCount accepts float-formatted counts", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, int64(3), parseCount("3"))
		require.Equal(t, int64(1), parseCount("1.0"))
		require.Equal(t, int64(0), parseCount(""))
	})

	t.Run("parsePrice keeps unparseable values absent", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, parsePrice(""))
		require.Nil(t, parsePrice("n/a"))
		require.Equal(t, 2295.0, *parsePrice("2,295"))
	})
}
