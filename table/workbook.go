// Copyright 2026 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"io"

	"github.com/stockparfait/errors"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// Workbook is an xlsx spreadsheet with one sheet per Table. Cells are written
// without any styling.
type Workbook struct {
	file   *excelize.File
	sheets []string
}

// NewWorkbook creates an empty workbook. It must be closed after use.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// Sheets returns the names of the sheets added so far, in order.
func (wb *Workbook) Sheets() []string {
	return wb.sheets
}

func (wb *Workbook) newSheet(name string) error {
	if name == "" {
		return errors.Reason("sheet name is required")
	}
	for _, s := range wb.sheets {
		if s == name {
			return errors.Reason("duplicate sheet %q", name)
		}
	}
	if len(wb.sheets) == 0 {
		if err := wb.file.SetSheetName(defaultSheet, name); err != nil {
			return errors.Annotate(err, "failed to rename the default sheet")
		}
	} else if _, err := wb.file.NewSheet(name); err != nil {
		return errors.Annotate(err, "failed to create sheet %q", name)
	}
	wb.sheets = append(wb.sheets, name)
	return nil
}

func cells(r Row) []interface{} {
	if cr, ok := r.(CellsRow); ok {
		return cr.Cells()
	}
	row := r.CSV()
	res := make([]interface{}, len(row))
	for i, s := range row {
		res[i] = s
	}
	return res
}

// AddTable writes t into a new sheet named t.Name, header first.
func (wb *Workbook) AddTable(t *Table, p Params) error {
	if err := wb.newSheet(t.Name); err != nil {
		return err
	}
	line := 1
	setRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return errors.Annotate(err, "bad row %d", line)
		}
		line++
		return wb.file.SetSheetRow(t.Name, cell, &values)
	}
	if h := p.header(t); len(h) > 0 {
		values := make([]interface{}, len(h))
		for i, s := range h {
			values[i] = s
		}
		if err := setRow(values); err != nil {
			return errors.Annotate(err, "failed to write header of %q", t.Name)
		}
	}
	for _, r := range p.rows(t) {
		if err := setRow(cells(r)); err != nil {
			return errors.Annotate(err, "failed to write row of %q", t.Name)
		}
	}
	return nil
}

// SaveAs writes the workbook to the file at path.
func (wb *Workbook) SaveAs(path string) error {
	if len(wb.sheets) == 0 {
		return errors.Reason("workbook has no sheets")
	}
	if err := wb.file.SaveAs(path); err != nil {
		return errors.Annotate(err, "failed to save workbook to %s", path)
	}
	return nil
}

// Write the workbook to w.
func (wb *Workbook) Write(w io.Writer) error {
	if len(wb.sheets) == 0 {
		return errors.Reason("workbook has no sheets")
	}
	if err := wb.file.Write(w); err != nil {
		return errors.Annotate(err, "failed to write workbook")
	}
	return nil
}

// Close releases the resources of the workbook.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// WriteWorkbook saves the tables as sheets of a new workbook at path.
func WriteWorkbook(path string, p Params, tables ...*Table) error {
	wb := NewWorkbook()
	defer wb.Close()
	for _, t := range tables {
		if err := wb.AddTable(t, p); err != nil {
			return err
		}
	}
	return wb.SaveAs(path)
}
