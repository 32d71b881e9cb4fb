package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Table is one sheet handed to the plotting side. NaN cells are blank.
type Table struct {
	Sheet     string
	RowHeader string
	Rows      []string
	Columns   []string
	Cells     [][]float64
}

// NewTable allocates a table with every cell blank.
func NewTable(sheet, rowHeader string, rows, columns []string) *Table {
	cells := make([][]float64, len(rows))
	for i := range cells {
		cells[i] = make([]float64, len(columns))
		for j := range cells[i] {
			cells[i][j] = math.NaN()
		}
	}
	return &Table{Sheet: sheet, RowHeader: rowHeader, Rows: rows, Columns: columns, Cells: cells}
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	for j, c := range t.Columns {
		if c == name {
			col := make([]float64, len(t.Rows))
			for i := range t.Rows {
				col[i] = t.Cells[i][j]
			}
			return col, true
		}
	}
	return nil, false
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type jsonTable struct {
	Sheet     string       `json:"sheet"`
	RowHeader string       `json:"row_header"`
	Rows      []string     `json:"rows"`
	Columns   []string     `json:"columns"`
	Cells     [][]*float64 `json:"cells"`
}

// MarshalJSON encodes blank cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	jt := jsonTable{Sheet: t.Sheet, RowHeader: t.RowHeader, Rows: t.Rows, Columns: t.Columns}
	for _, row := range t.Cells {
		out := make([]*float64, len(row))
		for j, v := range row {
			if !math.IsNaN(v) {
				v := v
				out[j] = &v
			}
		}
		jt.Cells = append(jt.Cells, out)
	}
	return json.Marshal(jt)
}

const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

// WriteTables renders tables to w. CSV output needs a directory; use WriteCSV.
func WriteTables(tables []*Table, format string, w io.Writer) error {
	switch format {
	case FormatMarkdown:
		return writeMarkdown(tables, w)
	case FormatJSON:
		return writeJSON(tables, w)
	case FormatTable, "":
		return writeTable(tables, w)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeTable(tables []*Table, w io.Writer) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s\n", t.Sheet)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\n", strings.ToUpper(t.RowHeader), strings.Join(t.Columns, "\t"))
		for r, label := range t.Rows {
			cells := make([]string, len(t.Columns))
			for c := range t.Columns {
				cells[c] = formatCell(t.Cells[r][c])
			}
			fmt.Fprintf(tw, "%s\t%s\n", label, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(tables []*Table, w io.Writer) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "### %s\n\n", t.Sheet)
		fmt.Fprintf(w, "| %s | %s |\n", t.RowHeader, strings.Join(t.Columns, " | "))
		fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(t.Columns)+1))
		for r, label := range t.Rows {
			cells := make([]string, len(t.Columns))
			for c := range t.Columns {
				cells[c] = formatCell(t.Cells[r][c])
			}
			fmt.Fprintf(w, "| %s | %s |\n", label, strings.Join(cells, " | "))
		}
	}
	return nil
}

func writeJSON(tables []*Table, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tables)
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", " ", "_", "%", "pct", "(", "", ")", "", "\n", "_")

// SheetFileName turns a sheet name into a file name.
func SheetFileName(sheet string) string {
	return unsafeName.Replace(sheet) + ".csv"
}

// WriteCSV writes one CSV file per table into dir and returns the paths.
func WriteCSV(tables []*Table, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	var paths []string
	for _, t := range tables {
		path := filepath.Join(dir, SheetFileName(t.Sheet))
		if err := writeCSVFile(t, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	cw := csv.NewWriter(f)
	cw.Write(append([]string{t.RowHeader}, t.Columns...))
	for r, label := range t.Rows {
		record := []string{label}
		for c := range t.Columns {
			record = append(record, formatCell(t.Cells[r][c]))
		}
		cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
