package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"acordex/internal/domain"
)

// BOM is written ahead of CSV output so Excel on Windows reads it as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes validation rules as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRules writes one row per rule.
func (w *CSVWriter) WriteRules(rules []domain.ValidationRule) error {
	for i := range rules {
		r := &rules[i]
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.CertificateType,
			r.ProductName,
			formatBool(r.IsActive),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered rows and returns any write error.
func (w *CSVWriter) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// BuildFilename returns a Content-Disposition safe file name such as
// "validation_rules_2026-10-16.xlsx".
func BuildFilename(base, ext string, now time.Time) string {
	s := nonAlphanumeric.ReplaceAllString(base, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "export"
	}
	return fmt.Sprintf("%s_%s.%s", s, now.Format("2006-01-02"), ext)
}
