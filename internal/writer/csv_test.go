package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

func sampleResult() *models.ParseResult {
	gold := models.TierGold
	uxp := 10
	return &models.ParseResult{
		DetectedTier: &gold,
		Language:     "en",
		Totals:       models.Totals{Miles: 12500, XP: 150, UXP: 40},
		Flights: []models.FlightLeg{
			{
				Date: time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC), PostingDate: time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC),
				Origin: "AMS", Destination: "BCN", FlightNumber: "KL1673", Airline: "KL",
				Miles: 625, XP: 10, UXP: &uxp, SafXP: 15, SafMiles: 150, PaidWithCash: true,
			},
			{
				Date:   time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC),
				Origin: "JFK", Destination: "AMS", FlightNumber: "DL*1", Airline: "DL",
				Miles: 3500, XP: 48,
			},
		},
	}
}

func TestCSVWriter_WriteFlights(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.WriteFlights(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "# Status,Gold") {
		t.Error("expected status metadata")
	}
	if !strings.Contains(output, "Date,Posted,Route,Flight,Airline,Miles,XP,UXP,SAF XP,SAF Miles,Paid With Cash") {
		t.Error("expected column headers")
	}
	if !strings.Contains(output, "2025-10-08,2025-10-12,AMS-BCN,KL1673,KL,625,10,10,15,150,true") {
		t.Error("expected first leg row")
	}
	if !strings.Contains(output, "2025-06-18,,JFK-AMS,DL*1,DL,3500,48,,0,0,false") {
		t.Error("expected partner leg row with empty UXP and posting date")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 3 metadata lines + 1 header + 2 legs = 6
	if len(lines) != 6 {
		t.Errorf("expected 6 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteFlightsNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.WriteFlights(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "# Status") {
		t.Error("did not expect metadata header")
	}
}

func TestCSVWriter_WriteLedger(t *testing.T) {
	correction := 25
	cycles := []models.QualificationCycle{
		{
			StartTier: models.TierGold,
			Months: []models.MonthRow{
				{Month: "2024-11", XP: 0, ProjectedXP: 0, CumulativeXP: 20, ProjectedCumulativeXP: 20},
				{Month: "2024-12", XP: 25, ProjectedXP: 25, CumulativeXP: 45, ProjectedCumulativeXP: 45, Correction: &correction},
			},
		},
		{
			StartTier: models.TierPlatinum,
			Months:    []models.MonthRow{{Month: "2025-11", XP: 60, ProjectedXP: 80, CumulativeXP: 60, ProjectedCumulativeXP: 80, UXP: 60, FlightCount: 2}},
		},
	}

	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.WriteLedger(&buf, cycles); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"Cycle,Start Tier,Month,XP,Projected XP,Cumulative XP,Projected Cumulative XP,UXP,Flights,Correction",
		"1,Gold,2024-11,0,0,20,20,0,0,",
		"1,Gold,2024-12,25,25,45,45,0,0,25",
		"2,Platinum,2025-11,60,80,60,80,60,2,",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCSVWriter_WriteFlightsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.csv")
	w := &CSVWriter{}
	if err := w.WriteFlightsFile(path, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "KL1673") {
		t.Error("expected flight in file")
	}
}
