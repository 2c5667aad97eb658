package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// CSVWriter writes flights and cycle ledgers to CSV.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteFlightsFile writes the flight legs of an import to a CSV file.
func (w *CSVWriter) WriteFlightsFile(path string, result *models.ParseResult) error {
	return writeFile(path, func(f io.Writer) error { return w.WriteFlights(f, result) })
}

// WriteLedgerFile writes the month-by-month ledger of every cycle to a CSV file.
func (w *CSVWriter) WriteLedgerFile(path string, cycles []models.QualificationCycle) error {
	return writeFile(path, func(f io.Writer) error { return w.WriteLedger(f, cycles) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteFlights writes one row per flight leg.
func (w *CSVWriter) WriteFlights(out io.Writer, result *models.ParseResult) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		if result.DetectedTier != nil {
			writer.Write([]string{"# Status", string(*result.DetectedTier)})
		}
		if result.Language != "" {
			writer.Write([]string{"# Language", result.Language})
		}
		writer.Write([]string{"# Balance", fmt.Sprintf("%d Miles", result.Totals.Miles), fmt.Sprintf("%d XP", result.Totals.XP), fmt.Sprintf("%d UXP", result.Totals.UXP)})
	}

	header := []string{"Date", "Posted", "Route", "Flight", "Airline", "Miles", "XP", "UXP", "SAF XP", "SAF Miles", "Paid With Cash"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, f := range result.Flights {
		uxp := ""
		if f.UXP != nil {
			uxp = strconv.Itoa(*f.UXP)
		}
		row := []string{
			formatDate(f.Date),
			formatDate(f.PostingDate),
			f.Route(),
			f.FlightNumber,
			f.Airline,
			strconv.Itoa(f.Miles),
			strconv.Itoa(f.XP),
			uxp,
			strconv.Itoa(f.SafXP),
			strconv.Itoa(f.SafMiles),
			strconv.FormatBool(f.PaidWithCash),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteLedger writes one row per cycle month.
func (w *CSVWriter) WriteLedger(out io.Writer, cycles []models.QualificationCycle) error {
	writer := csv.NewWriter(out)

	header := []string{"Cycle", "Start Tier", "Month", "XP", "Projected XP", "Cumulative XP", "Projected Cumulative XP", "UXP", "Flights", "Correction"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, c := range cycles {
		for _, m := range c.Months {
			correction := ""
			if m.Correction != nil {
				correction = strconv.Itoa(*m.Correction)
			}
			row := []string{
				strconv.Itoa(i + 1),
				string(c.StartTier),
				m.Month,
				strconv.Itoa(m.XP),
				strconv.Itoa(m.ProjectedXP),
				strconv.Itoa(m.CumulativeXP),
				strconv.Itoa(m.ProjectedCumulativeXP),
				strconv.Itoa(m.UXP),
				strconv.Itoa(m.FlightCount),
				correction,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
