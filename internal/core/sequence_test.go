package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"commerce-backoffice/internal/core"
)

func TestFinancialYearLabel(t *testing.T) {
	cases := []struct {
		date       string
		startMonth int
		want       string
	}{
		{"2025-04-01", 4, "2025-26"}, // first day of the FY
		{"2025-09-15", 4, "2025-26"},
		{"2026-03-31", 4, "2025-26"}, // last day of the FY
		{"2026-04-01", 4, "2026-27"},
		{"2025-01-10", 1, "2025-26"}, // calendar-year configuration
		{"2025-12-31", 1, "2025-26"},
		{"2025-06-01", 7, "2024-25"}, // July-start FY, June still belongs to the prior year
		{"2025-07-01", 7, "2025-26"},
		{"2025-02-01", 0, "2024-25"}, // invalid start month falls back to April
		{"2025-02-01", 13, "2024-25"},
	}

	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		if err != nil {
			t.Fatalf("bad test date %s: %v", tc.date, err)
		}
		got := core.FinancialYearLabel(d, tc.startMonth)
		assert.Equal(t, tc.want, got, "date %s startMonth %d", tc.date, tc.startMonth)
	}
}

func TestFinancialYearLabel_CenturyWrap(t *testing.T) {
	d, _ := time.Parse("2006-01-02", "2099-06-01")
	assert.Equal(t, "2099-00", core.FinancialYearLabel(d, 4))
}

func TestAccountingPeriod(t *testing.T) {
	d, _ := time.Parse("2006-01-02", "2025-09-07")
	assert.Equal(t, "2025-09", core.AccountingPeriod(d))
}
