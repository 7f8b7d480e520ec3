// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table renders API responses as CSV, aligned text or spreadsheet
// sheets.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"
)

// Row interface that a table row representation must implement.
type Row interface {
	CSV() []string // an encoding/csv compatible row representation
}

// CellsRow is optionally implemented by rows which carry typed values, so
// that spreadsheets store numbers as numbers. Otherwise the CSV strings are
// written.
type CellsRow interface {
	Row
	Cells() []interface{}
}

// Table is a named sequence of rows with an optional header. The name is used
// as the sheet name when the table is added to a Workbook.
//
// A typical use:
//
//	prices, _ := client.InstrumentStockPrices(ctx, 3)
//	t := NewTable(borsdata.StockPriceHeader()...)
//	for _, p := range prices {
//	  t.AddRow(p)
//	}
//	t.WriteText(os.Stdout, Params{Rows: 10})
type Table struct {
	Name   string
	Header []string // optional, may be nil
	Rows   []Row
}

// NewTable creates a new Table instance with optional column headers.  It is
// expected that, when present, the number of column headers is the same as the
// number of elements in each Row.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// NewNamedTable is NewTable with a sheet name.
func NewNamedTable(name string, header ...string) *Table {
	return &Table{Name: name, Header: header}
}

// AddRow adds one or more rows to the table.
func (t *Table) AddRow(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Params are parameters for pretty-printing or export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

func (p Params) header(t *Table) []string {
	if p.NoHeader {
		return nil
	}
	return t.Header
}

func (p Params) rows(t *Table) []Row {
	if p.Rows > 0 && p.Rows < len(t.Rows) {
		return t.Rows[:p.Rows]
	}
	return t.Rows
}

// WriteCSV writes the table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if h := p.header(t); len(h) > 0 {
		if err := cw.Write(h); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for _, r := range p.rows(t) {
		if err := cw.Write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// columnWidths of the rows, in runes, capped at maxWidth when it's positive.
func columnWidths(rows [][]string, maxWidth int) ([]int, error) {
	var widths []int
	for _, row := range rows {
		if len(row) == 0 {
			return nil, errors.Reason("row size = 0")
		}
		if widths == nil {
			widths = make([]int, len(row))
		}
		if len(row) != len(widths) {
			return nil, errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i, s := range row {
			n := len([]rune(s))
			if maxWidth > 0 && n > maxWidth {
				n = maxWidth
			}
			if n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths, nil
}

func alignRow(row []string, widths []int) string {
	cells := make([]string, len(row))
	for i, s := range row {
		if r := []rune(s); len(r) > widths[i] {
			s = string(r[:widths[i]-2]) + ".."
		}
		cells[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
	}
	return strings.Join(cells, " | ")
}

// WriteText writes the table as right-aligned columns separated by " | ", with
// a dashed line under the header.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	var lines [][]string
	header := p.header(t)
	if len(header) > 0 {
		lines = append(lines, header)
	}
	for _, r := range p.rows(t) {
		lines = append(lines, r.CSV())
	}
	widths, err := columnWidths(lines, p.MaxColWidth)
	if err != nil {
		return errors.Annotate(err, "failed to compute column widths")
	}
	if len(header) > 0 {
		dashes := make([]string, len(widths))
		for i, n := range widths {
			dashes[i] = strings.Repeat("-", n)
		}
		lines = append([][]string{header, dashes}, lines[1:]...)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, alignRow(l, widths)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
