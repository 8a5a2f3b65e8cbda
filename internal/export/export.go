package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
	"github.com/cypherlabdev/sportsbook-explorer/pkg/pivot"
)

// Format is a delimited export format
type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
)

var (
	pivotHeader = []string{"Participant", "Line", "Over Odds", "Under Odds"}
	flatHeader  = []string{"Label", "Odds"}
	mixedHeader = append(append([]string{}, pivotHeader...), flatHeader...)
)

// ParseFormat validates a format name; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "tsv", "tab":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FormatForPath picks TSV for .tsv/.tab files and the fallback otherwise
func FormatForPath(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".csv":
		return FormatCSV
	default:
		return fallback
	}
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatTSV {
		return "text/tab-separated-values"
	}
	return "text/csv"
}

// Header returns the column names for a result shape
func Header(shape models.Shape) []string {
	switch shape {
	case models.ShapePivot:
		return pivotHeader
	case models.ShapeMixed:
		return mixedHeader
	default:
		return flatHeader
	}
}

// Records converts a result set into header plus data records
func Records(rs *models.ResultSet) [][]string {
	shape := rs.Shape()
	records := make([][]string, 0, len(rs.Rows)+1)
	records = append(records, Header(shape))

	for _, row := range rs.Rows {
		records = append(records, record(row, shape))
	}
	return records
}

func record(row models.Row, shape models.Shape) []string {
	switch v := row.(type) {
	case models.PivotRow:
		cells := []string{v.Participant, pivot.FormatLine(v.Line), pivot.FormatOdds(v.OverOdds), pivot.FormatOdds(v.UnderOdds)}
		if shape == models.ShapeMixed {
			cells = append(cells, "", "")
		}
		return cells
	case models.FlatRow:
		cells := []string{v.Label, pivot.FormatAmerican(v.Odds)}
		if shape == models.ShapeMixed {
			cells = append([]string{"", "", "", ""}, cells...)
		}
		return cells
	default:
		return nil
	}
}

// Writer writes result sets as delimited text
type Writer struct {
	format Format
}

// NewWriter creates a writer for the given format
func NewWriter(format Format) *Writer {
	return &Writer{format: format}
}

// Write emits the header row followed by one record per row
func (w *Writer) Write(out io.Writer, rs *models.ResultSet) error {
	cw := csv.NewWriter(out)
	if w.format == FormatTSV {
		cw.Comma = '\t'
	}

	if err := cw.WriteAll(Records(rs)); err != nil {
		return fmt.Errorf("failed to write %s export: %w", w.format, err)
	}
	return nil
}

// WriteFile creates or truncates path and writes the result set to it
func (w *Writer) WriteFile(path string, rs *models.ResultSet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()

	return w.Write(f, rs)
}

// RenderTable prints an aligned, indexed table of the result for the log
func RenderTable(out io.Writer, rs *models.ResultSet) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	records := Records(rs)
	for i, rec := range records {
		prefix := ""
		if i > 0 {
			prefix = strconv.Itoa(i - 1)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", prefix, strings.Join(rec, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
