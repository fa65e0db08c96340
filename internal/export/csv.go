// Package export renders the measurement history as delimited text.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"drape-meter/internal/history"
)

// WriteCSV renders measurements as CSV with a header row, in the order
// given (most recent first when fed from history.Items).
func WriteCSV(w io.Writer, measurements []history.Measurement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"timestamp", "area_cm2", "drape_coefficient_pct", "category"}); err != nil {
		return err
	}

	for _, m := range measurements {
		rec := []string{
			m.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(m.AreaCm2, 'f', 2, 64),
			strconv.FormatFloat(m.CoefficientPct, 'f', 1, 64),
			m.Category.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
