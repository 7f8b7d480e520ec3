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

// Package export writes enriched instruments and per-instrument data to CSV
// and xlsx files.
package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockparfait/borsdata/borsdata"
	"github.com/stockparfait/borsdata/enrich"
	"github.com/stockparfait/borsdata/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// File and sheet names.
const (
	InstrumentsFile  = "instrument_with_meta_data"
	InstrumentsSheet = "instruments_with_meta_data"

	PricesSheet         = "stock_prices"
	QuarterReportsSheet = "reports_quarter"
	YearReportsSheet    = "reports_year"
	R12ReportsSheet     = "reports_r12"
)

// RecordsTable puts the records into a table with the enrich.Header columns.
func RecordsTable(name string, records []enrich.Record) *table.Table {
	t := table.NewNamedTable(name, enrich.Header()...)
	for _, r := range records {
		t.AddRow(r)
	}
	return t
}

// InstrumentsWithMetadata writes the records into dir as both CSV and xlsx,
// creating dir if needed. It returns the paths of the two files.
func InstrumentsWithMetadata(ctx context.Context, dir string, records []enrich.Record) (csvPath, xlsxPath string, err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return "", "", errors.Annotate(err, "failed to create %s", dir)
	}
	t := RecordsTable(InstrumentsSheet, records)

	csvPath = filepath.Join(dir, InstrumentsFile+".csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return "", "", errors.Annotate(err, "failed to create %s", csvPath)
	}
	if err = t.WriteCSV(f, table.Params{}); err != nil {
		f.Close()
		return "", "", errors.Annotate(err, "failed to write %s", csvPath)
	}
	if err = f.Close(); err != nil {
		return "", "", errors.Annotate(err, "failed to close %s", csvPath)
	}

	xlsxPath = filepath.Join(dir, InstrumentsFile+".xlsx")
	if err = table.WriteWorkbook(xlsxPath, table.Params{}, t); err != nil {
		return "", "", errors.Annotate(err, "failed to write %s", xlsxPath)
	}
	logging.Infof(ctx, "exported %d instruments to %s and %s", len(records), csvPath, xlsxPath)
	return csvPath, xlsxPath, nil
}

// segment turns a name into a path element: lowercased, spaces replaced by
// underscores. Path separators are replaced too, and "." or ".." becomes "_",
// so that a name cannot escape its directory.
func segment(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", `\`, "_")
	s := r.Replace(strings.ToLower(name))
	switch s {
	case "", ".", "..":
		return "_"
	}
	return s
}

// InstrumentPath is the location of an instrument's workbook:
// root/YYYY-MM-DD/country/market/name.xlsx.
func InstrumentPath(root string, day borsdata.Date, country, market, name string) string {
	return filepath.Join(root, day.String(), segment(country), segment(market),
		segment(name)+".xlsx")
}

// InstrumentTables fetches prices and reports of the instrument and returns
// them as the four workbook sheets.
func InstrumentTables(ctx context.Context, client *borsdata.Client, id int) ([]*table.Table, error) {
	prices, err := client.InstrumentStockPrices(ctx, id)
	if err != nil {
		return nil, err
	}
	reports, err := client.InstrumentReports(ctx, id)
	if err != nil {
		return nil, err
	}
	pt := table.NewNamedTable(PricesSheet, borsdata.StockPriceHeader()...)
	for _, p := range prices {
		pt.AddRow(p)
	}
	tables := []*table.Table{pt}
	for _, r := range []struct {
		name string
		rt   borsdata.ReportTable
	}{
		{QuarterReportsSheet, reports.Quarter},
		{YearReportsSheet, reports.Year},
		{R12ReportsSheet, reports.R12},
	} {
		t := table.NewNamedTable(r.name, r.rt.Header()...)
		for _, row := range r.rt.Rows() {
			t.AddRow(row)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Workbooks writes one workbook per record under root, in the layout of
// InstrumentPath. The first failing instrument aborts the export. It returns
// the paths of the written files.
func Workbooks(ctx context.Context, client *borsdata.Client, root string, day borsdata.Date, records []enrich.Record) ([]string, error) {
	var paths []string
	for _, r := range records {
		tables, err := InstrumentTables(ctx, client, r.ID)
		if err != nil {
			return nil, errors.Annotate(err, "failed to export instrument %d (%s)", r.ID, r.Name)
		}
		path := InstrumentPath(root, day, r.Country, r.Market, r.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Annotate(err, "failed to create %s", filepath.Dir(path))
		}
		if err := table.WriteWorkbook(path, table.Params{}, tables...); err != nil {
			return nil, errors.Annotate(err, "failed to export instrument %d (%s)", r.ID, r.Name)
		}
		logging.Infof(ctx, "Excel exported: %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}
