package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned when no method produced text that looks like an
// activity export.
var ErrUnreadable = errors.New("no readable text could be extracted")

// Load returns the pages of an export file. Plain-text exports (.txt) are
// read as a single page; anything else is treated as a PDF.
func Load(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return []string{string(data)}, nil
	default:
		return ExtractText(path)
	}
}

// ExtractText reads a PDF file and returns the text of each page. The PDF
// library is tried first with several strategies, then the external
// pdftotext command (poppler-utils).
func ExtractText(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pages, libErr := extractWithLibrary(f, info.Size())
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	popplerPages, popplerErr := extractWithPdftotext(path)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, libErr)
	}
	return nil, ErrUnreadable
}

// ExtractBytes extracts the pages of an uploaded PDF held in memory.
func ExtractBytes(data []byte) ([]string, error) {
	pages, libErr := extractWithLibrary(bytes.NewReader(data), int64(len(data)))
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	// pdftotext needs a file on disk
	tmp, err := os.CreateTemp("", "xp-ledger-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}

	popplerPages, popplerErr := extractWithPdftotext(tmp.Name())
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}
	if libErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, libErr)
	}
	return nil, ErrUnreadable
}

// textQuality returns the share of runes that are letters, digits, spaces or
// common punctuation. Exports are multilingual so accented letters count.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"€$£%&+*>–", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// exportWords show up in every loyalty activity export, whatever the language.
var exportWords = []string{
	"miles", "mijlen", "meilen", "millas", "miglia", "milhas",
	"xp", "flight", "vlucht", "vol ", "flug", "vuelo", "volo", "voo",
	"trip", "reis", "voyage", "reise", "viaje", "viaggio", "viagem",
	"flying blue", "balance", "saldo", "solde",
}

func containsExportWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range exportWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, more than 60% readable
// runes and at least one export word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsExportWords(pages)
}

// extractWithPdftotext shells out to pdftotext from poppler-utils, one page at a time.
func extractWithPdftotext(path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	numPages := 1
	if out, err := exec.Command("pdfinfo", path).Output(); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			if strings.HasPrefix(line, "Pages:") {
				if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); err == nil && n > 0 {
					numPages = n
				}
			}
		}
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		p := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", p, "-l", p, path, "-").Output()
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) > 0 {
		return pages, nil
	}

	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}
	if text := strings.TrimSpace(string(out)); text != "" {
		return []string{text}, nil
	}
	return nil, errors.New("pdftotext produced no output")
}

// extractWithLibrary runs the ledongthuc/pdf strategies in order of layout
// fidelity and returns the first readable result.
func extractWithLibrary(ra io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("pdf has no pages")
	}

	for _, strategy := range []func(*pdf.Reader, int) []string{extractByRow, extractByContent, extractByPagePlainText} {
		pages = strategy(r, numPages)
		if isReadableText(pages) {
			return pages, nil
		}
	}
	if text := extractByReaderPlainText(r); isReadableText([]string{text}) {
		return []string{text}, nil
	}
	return pages, nil
}

// extractByRow uses GetTextByRow, which keeps a transaction on one line.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent groups text objects by Y coordinate into rows, then sorts by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type textItem struct {
		x float64
		s string
	}
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rows := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], textItem{x: t.X, s: t.S})
		}
		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		// PDF Y grows upwards
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			items := rows[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })
			var b strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					b.WriteString(" ")
				}
				b.WriteString(item.s)
				prevX = item.x
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
