package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insightdelivered/xp-ledger/internal/cycle"
	"github.com/insightdelivered/xp-ledger/internal/extractor"
	"github.com/insightdelivered/xp-ledger/internal/metrics"
	"github.com/insightdelivered/xp-ledger/internal/models"
	"github.com/insightdelivered/xp-ledger/internal/parser"
	"github.com/insightdelivered/xp-ledger/internal/store"
	"github.com/insightdelivered/xp-ledger/internal/writer"
)

// Version is reported by /api/health and the CLI.
const Version = "1.0.0"

// ImportResponse is the JSON response from POST /api/import.
type ImportResponse struct {
	Success          bool                          `json:"success"`
	Error            string                        `json:"error,omitempty"`
	ImportID         string                        `json:"importId,omitempty"`
	Source           string                        `json:"source,omitempty"`
	Language         string                        `json:"language,omitempty"`
	DetectedTier     *models.Tier                  `json:"detectedTier,omitempty"`
	Totals           models.Totals                 `json:"totals"`
	Counts           Counts                        `json:"counts"`
	OldestDate       *time.Time                    `json:"oldestDate,omitempty"`
	NewestDate       *time.Time                    `json:"newestDate,omitempty"`
	Flights          []models.FlightLeg            `json:"flights"`
	Earnings         []models.MonthlyEarning       `json:"earnings"`
	Requalifications []models.RequalificationEvent `json:"requalifications"`
	Suggested        *models.CycleSettings         `json:"suggestedSettings,omitempty"`
	DebugLines       []models.DebugLine            `json:"debugLines,omitempty"`
	Version          string                        `json:"version,omitempty"`
}

// Counts summarises what an import recognised.
type Counts struct {
	Flights          int `json:"flights"`
	Earnings         int `json:"earnings"`
	Requalifications int `json:"requalifications"`
}

// CyclesRequest is the body of POST /api/cycles. Flights and earnings are
// added to those of the referenced import, if any.
type CyclesRequest struct {
	ImportID    string                       `json:"importId"`
	Settings    *models.CycleSettings        `json:"settings"`
	Flights     []models.FlightLeg           `json:"flights"`
	Earnings    []models.MonthlyEarning      `json:"earnings"`
	Corrections map[string]models.Correction `json:"corrections"`
	Today       string                       `json:"today"` // YYYY-MM-DD
}

// CyclesResponse is the JSON response from POST /api/cycles.
type CyclesResponse struct {
	Success  bool                        `json:"success"`
	Error    string                      `json:"error,omitempty"`
	Settings models.CycleSettings        `json:"settings"`
	Cycles   []models.QualificationCycle `json:"cycles"`
	Active   int                         `json:"activeCycle"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Store       *store.Imports
	Metrics     *metrics.Metrics
	Log         *zap.Logger
	DebugLines  bool
	UploadLimit int
	Now         func() time.Time
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// HandleImport parses an uploaded export (form field "file") or pasted
// export text (form field "text") and keeps the result for later requests.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	start := time.Now()

	source, pages, err := h.readUpload(c)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return err
		}
		h.Metrics.ObserveImport(sourceLabel(source), metrics.OutcomeError, time.Since(start), nil)
		h.Log.Warn("export extraction failed", zap.String("source", source), zap.Error(err))
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("text extraction failed: %v", err))
	}

	result := parser.ParsePages(pages)
	debug := h.DebugLines || c.FormValue("debug") == "true"

	if result.Empty() {
		h.Metrics.ObserveImport(sourceLabel(source), metrics.OutcomeEmpty, time.Since(start), result)
		h.Log.Info("export had no recognisable records",
			zap.String("source", source),
			zap.Int("lines", len(result.DebugLines)),
		)
		resp := ImportResponse{
			Success: false,
			Error:   "no flights or earnings were recognised in this export",
			Source:  source,
			Version: Version,
		}
		if debug {
			resp.DebugLines = result.DebugLines
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}

	imp := h.Store.Put(source, result)
	h.Metrics.ObserveImport(sourceLabel(source), metrics.OutcomeOK, time.Since(start), result)
	h.Log.Info("export imported",
		zap.String("import_id", imp.ID),
		zap.String("source", source),
		zap.String("language", result.Language),
		zap.Int("flights", len(result.Flights)),
		zap.Int("earnings", len(result.Earnings)),
		zap.Int("requalifications", len(result.Requalifications)),
	)

	suggested := cycle.SuggestSettings(result)
	resp := ImportResponse{
		Success:          true,
		ImportID:         imp.ID,
		Source:           source,
		Language:         result.Language,
		DetectedTier:     result.DetectedTier,
		Totals:           result.Totals,
		OldestDate:       result.OldestDate,
		NewestDate:       result.NewestDate,
		Flights:          result.Flights,
		Earnings:         result.Earnings,
		Requalifications: result.Requalifications,
		Suggested:        &suggested,
		Version:          Version,
		Counts: Counts{
			Flights:          len(result.Flights),
			Earnings:         len(result.Earnings),
			Requalifications: len(result.Requalifications),
		},
	}
	if debug {
		resp.DebugLines = result.DebugLines
	}
	return c.JSON(resp)
}

// readUpload returns the source name and the pages of the submitted export.
func (h *Handler) readUpload(c *fiber.Ctx) (string, []string, error) {
	if text := c.FormValue("text"); strings.TrimSpace(text) != "" {
		return "text", []string{text}, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "No export uploaded. Use form field 'file' or 'text'.")
	}
	if h.UploadLimit > 0 && header.Size > int64(h.UploadLimit) {
		return "", nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.UploadLimit))
	}

	f, err := header.Open()
	if err != nil {
		return header.Filename, nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return header.Filename, nil, fmt.Errorf("reading upload: %w", err)
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".txt", ".text":
		return header.Filename, []string{string(data)}, nil
	case ".pdf":
		pages, err := extractor.ExtractBytes(data)
		return header.Filename, pages, err
	default:
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Only PDF and text exports are supported.")
	}
}

func sourceLabel(source string) string {
	switch {
	case source == "text":
		return "text"
	case strings.HasSuffix(strings.ToLower(source), ".pdf"):
		return "pdf"
	default:
		return "file"
	}
}

// HandleCycles builds the qualification cycle chain from an import, manual
// entries, or both. With ?format=csv it returns the monthly ledger as CSV.
func (h *Handler) HandleCycles(c *fiber.Ctx) error {
	var req CyclesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}

	in := cycle.Input{
		Flights:     req.Flights,
		Earnings:    req.Earnings,
		Corrections: req.Corrections,
	}
	if req.ImportID != "" {
		imp, err := h.Store.Get(req.ImportID)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "import not found or expired")
		}
		if err != nil {
			return err
		}
		in.Flights = append(append([]models.FlightLeg{}, imp.Result.Flights...), req.Flights...)
		in.Earnings = append(append([]models.MonthlyEarning{}, imp.Result.Earnings...), req.Earnings...)
		if req.Settings == nil {
			suggested := cycle.SuggestSettings(imp.Result)
			req.Settings = &suggested
		}
	}
	if req.Settings != nil {
		in.Settings = *req.Settings
	}

	today := h.now()
	if req.Today != "" {
		t, err := time.Parse("2006-01-02", req.Today)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid today %q, want YYYY-MM-DD", req.Today))
		}
		today = t
	}
	in.Today = today

	cycles := cycle.Build(in)
	h.Metrics.ObserveCycles(len(cycles))
	h.Log.Debug("cycles built",
		zap.String("import_id", req.ImportID),
		zap.Int("flights", len(in.Flights)),
		zap.Int("cycles", len(cycles)),
	)

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		w := &writer.CSVWriter{}
		if err := w.WriteLedger(&buf, cycles); err != nil {
			return fmt.Errorf("CSV generation failed: %w", err)
		}
		c.Attachment("ledger.csv")
		return c.Send(buf.Bytes())
	}

	return c.JSON(CyclesResponse{
		Success:  true,
		Settings: in.Settings,
		Cycles:   cycles,
		Active:   cycle.ActiveCycle(cycles, today),
	})
}

// HandleGetImport returns a stored import.
func (h *Handler) HandleGetImport(c *fiber.Ctx) error {
	imp, err := h.lookup(c)
	if err != nil {
		return err
	}
	r := imp.Result
	return c.JSON(ImportResponse{
		Success:          true,
		ImportID:         imp.ID,
		Source:           imp.Source,
		Language:         r.Language,
		DetectedTier:     r.DetectedTier,
		Totals:           r.Totals,
		OldestDate:       r.OldestDate,
		NewestDate:       r.NewestDate,
		Flights:          r.Flights,
		Earnings:         r.Earnings,
		Requalifications: r.Requalifications,
		Version:          Version,
		Counts: Counts{
			Flights:          len(r.Flights),
			Earnings:         len(r.Earnings),
			Requalifications: len(r.Requalifications),
		},
	})
}

// HandleFlightsCSV returns the flight legs of a stored import as CSV.
func (h *Handler) HandleFlightsCSV(c *fiber.Ctx) error {
	imp, err := h.lookup(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	w := &writer.CSVWriter{IncludeHeader: c.Query("header") != "false"}
	if err := w.WriteFlights(&buf, imp.Result); err != nil {
		return fmt.Errorf("CSV generation failed: %w", err)
	}
	c.Attachment("flights.csv")
	return c.Send(buf.Bytes())
}

func (h *Handler) lookup(c *fiber.Ctx) (store.Import, error) {
	imp, err := h.Store.Get(c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return store.Import{}, fiber.NewError(fiber.StatusNotFound, "import not found or expired")
	}
	return imp, err
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}
