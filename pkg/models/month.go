package models

import (
	"fmt"
	"time"
)

// OptionYearMonth is the template option selecting the month of a
// month-scoped list.
const OptionYearMonth = "<YEAR_MONTH>"

// YearMonth is a calendar month used as a request token.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the month containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses a request token such as "2019-02".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return YearMonthOf(t), nil
}

// String renders the request token, e.g. "2019-02".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Previous returns the month before ym.
func (ym YearMonth) Previous() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Options returns template options selecting this month.
func (ym YearMonth) Options() map[string]string {
	return map[string]string{OptionYearMonth: ym.String()}
}

// MonthList returns the month containing now followed by the n-1
// previous months.
func MonthList(now time.Time, n int) []YearMonth {
	if n <= 0 {
		return nil
	}

	months := make([]YearMonth, 0, n)
	ym := YearMonthOf(now)
	for i := 0; i < n; i++ {
		months = append(months, ym)
		ym = ym.Previous()
	}
	return months
}
