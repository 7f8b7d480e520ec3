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

package borsdata

import (
	"context"
	"sort"
	"strings"

	"github.com/stockparfait/errors"
	"golang.org/x/exp/slices"
)

// Report is one financial statement. Fields holds every reported value,
// including "year" and "period", keyed by the lowercased field name. Nulls
// are stored as 0.
type Report struct {
	Year   int
	Period int
	Fields map[string]Value
}

// Float returns the numeric value of the field, or 0 if it is missing or not
// a number.
func (r Report) Float(name string) float64 {
	f, _ := r.Fields[strings.ToLower(name)].(float64)
	return f
}

// ReportTable is a sequence of reports of one kind, sorted ascending by (year,
// period), with the union of their field names as columns.
type ReportTable struct {
	Columns []string // "year", "period", then the other names sorted
	Reports []Report
}

// Header returns the column names.
func (t ReportTable) Header() []string {
	return t.Columns
}

// ReportRow is a Report rendered against the columns of its table.
type ReportRow struct {
	Report
	Columns []string
}

// CSV implements table.Row. Fields missing in this report are printed as 0.
func (r ReportRow) CSV() []string {
	res := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		res[i] = FormatValue(r.Fields[c])
	}
	return res
}

// Cells implements table.CellsRow.
func (r ReportRow) Cells() []interface{} {
	res := make([]interface{}, len(r.Columns))
	for i, c := range r.Columns {
		v := r.Fields[c]
		if v == nil {
			v = 0.0
		}
		res[i] = v
	}
	return res
}

// Rows returns the reports as table rows.
func (t ReportTable) Rows() []ReportRow {
	rows := make([]ReportRow, len(t.Reports))
	for i, r := range t.Reports {
		rows[i] = ReportRow{Report: r, Columns: t.Columns}
	}
	return rows
}

// Last returns the most recent report, if any.
func (t ReportTable) Last() (Report, bool) {
	if len(t.Reports) == 0 {
		return Report{}, false
	}
	return t.Reports[len(t.Reports)-1], true
}

func intField(m map[string]Value, name string) (int, error) {
	switch v := m[name].(type) {
	case float64:
		return int(v), nil
	case nil:
		return 0, nil
	default:
		return 0, errors.Reason("%s = %v is not a number", name, v)
	}
}

// NewReportTable normalizes raw report objects: field names are lowercased,
// nulls become 0, and reports are sorted by (year, period).
func NewReportTable(raw []map[string]interface{}) (ReportTable, error) {
	names := make(map[string]struct{})
	reports := make([]Report, 0, len(raw))
	for i, obj := range raw {
		fields := make(map[string]Value, len(obj))
		for k, v := range obj {
			k = strings.ToLower(k)
			if v == nil {
				v = 0.0
			}
			fields[k] = v
			names[k] = struct{}{}
		}
		year, err := intField(fields, "year")
		if err != nil {
			return ReportTable{}, errors.Annotate(err, "invalid report %d", i)
		}
		period, err := intField(fields, "period")
		if err != nil {
			return ReportTable{}, errors.Annotate(err, "invalid report %d", i)
		}
		reports = append(reports, Report{Year: year, Period: period, Fields: fields})
	}
	slices.SortStableFunc(reports, func(a, b Report) bool {
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Period < b.Period
	})
	columns := []string{"year", "period"}
	delete(names, "year")
	delete(names, "period")
	rest := make([]string, 0, len(names))
	for n := range names {
		rest = append(rest, n)
	}
	sort.Strings(rest)
	return ReportTable{Columns: append(columns, rest...), Reports: reports}, nil
}

// Reports of an instrument at the three granularities.
type Reports struct {
	Quarter ReportTable
	Year    ReportTable
	R12     ReportTable // rolling 12 months
}

// InstrumentReports fetches quarterly, yearly and rolling 12 month reports of
// the instrument.
func (c *Client) InstrumentReports(ctx context.Context, id int) (*Reports, error) {
	var res struct {
		Year    []map[string]interface{} `json:"reportsYear"`
		Quarter []map[string]interface{} `json:"reportsQuarter"`
		R12     []map[string]interface{} `json:"reportsR12"`
	}
	if err := c.get(ctx, pathf("instruments/%d/reports", id), nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch reports for instrument %d", id)
	}
	var reports Reports
	var err error
	if reports.Quarter, err = NewReportTable(res.Quarter); err != nil {
		return nil, errors.Annotate(err, "bad quarterly reports for instrument %d", id)
	}
	if reports.Year, err = NewReportTable(res.Year); err != nil {
		return nil, errors.Annotate(err, "bad yearly reports for instrument %d", id)
	}
	if reports.R12, err = NewReportTable(res.R12); err != nil {
		return nil, errors.Annotate(err, "bad R12 reports for instrument %d", id)
	}
	return &reports, nil
}

// InstrumentReportsByType fetches reports of a single type: ReportYear,
// ReportR12 or ReportQuarter.
func (c *Client) InstrumentReportsByType(ctx context.Context, id int, reportType string) (ReportTable, error) {
	var res struct {
		Reports []map[string]interface{} `json:"reports"`
	}
	path := pathf("instruments/%d/reports/%s", id, reportType)
	if err := c.get(ctx, path, nil, &res); err != nil {
		return ReportTable{}, annotate(err, "failed to fetch %s reports for instrument %d",
			reportType, id)
	}
	t, err := NewReportTable(res.Reports)
	if err != nil {
		return ReportTable{}, errors.Annotate(err, "bad %s reports for instrument %d",
			reportType, id)
	}
	return t, nil
}

// ReportsMetadata fetches descriptions of all report fields.
func (c *Client) ReportsMetadata(ctx context.Context) ([]ReportMetadata, error) {
	var res struct {
		Metadata []ReportMetadata `json:"reportMetadatas"`
	}
	if err := c.get(ctx, "instruments/reports/metadata", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch report metadata")
	}
	return res.Metadata, nil
}
