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

// Package analysis computes simple rankings and ratios over the data of many
// instruments: recent price performance, KPI history and the P/E ratio.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/stockparfait/borsdata/borsdata"
	"github.com/stockparfait/borsdata/enrich"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// EarningsPerShare is the R12 report field used for the P/E ratio.
const EarningsPerShare = "earnings_per_share"

func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PercentChange of the last close relative to the close `days` rows earlier,
// in percent rounded to 2 decimals. It is not defined (false) when there are
// not enough prices or the earlier close is 0. Prices must be sorted by date.
func PercentChange(prices []borsdata.StockPrice, days int) (float64, bool) {
	if days < 1 || len(prices) <= days {
		return 0, false
	}
	last := prices[len(prices)-1].Close
	prev := prices[len(prices)-1-days].Close
	if prev == 0 {
		return 0, false
	}
	return round((last/prev-1)*100, 2), true
}

// Performer is a row of TopPerformers.
type Performer struct {
	Name      string
	PctChange float64
}

// PerformerHeader matches Performer.CSV.
func PerformerHeader() []string { return []string{"stock", "pct_change"} }

// CSV implements table.Row.
func (p Performer) CSV() []string {
	return []string{p.Name, strconv.FormatFloat(p.PctChange, 'f', 2, 64)}
}

// top returns the first n elements, or all of them when n <= 0.
func top[T any](s []T, n int) []T {
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}

// TopPerformers ranks the instruments by PercentChange over `days` rows,
// highest first, and returns at most n of them (all when n <= 0). Instruments
// without enough price history are skipped.
func TopPerformers(ctx context.Context, client *borsdata.Client, records []enrich.Record, n, days int) ([]Performer, error) {
	var res []Performer
	for _, r := range records {
		prices, err := client.InstrumentStockPrices(ctx, r.ID)
		if err != nil {
			return nil, errors.Annotate(err, "failed to rank %s", r.Name)
		}
		pct, ok := PercentChange(prices, days)
		if !ok {
			logging.Warningf(ctx, "skipping %s: no %d day change in %d prices",
				r.Name, days, len(prices))
			continue
		}
		res = append(res, Performer{Name: r.Name, PctChange: pct})
	}
	slices.SortStableFunc(res, func(a, b Performer) bool {
		return a.PctChange > b.PctChange
	})
	return top(res, n), nil
}

// KPIRow is a KPI value of a named instrument.
type KPIRow struct {
	Name string
	borsdata.KPIValue
}

// KPIRowHeader matches KPIRow.CSV.
func KPIRowHeader() []string {
	return []string{"name", "year", "period", "kpi_value"}
}

// CSV implements table.Row.
func (r KPIRow) CSV() []string {
	return append([]string{r.Name}, r.KPIValue.CSV()...)
}

// Cells implements table.CellsRow.
func (r KPIRow) Cells() []interface{} {
	return append([]interface{}{r.Name}, r.KPIValue.Cells()...)
}

// KPIHistory concatenates the KPI history of the instruments, in the order of
// records. Instruments with no data are left out.
func KPIHistory(ctx context.Context, client *borsdata.Client, records []enrich.Record, kpiID int, reportType, priceType string) ([]KPIRow, error) {
	var histories [][]KPIRow
	for _, r := range records {
		values, err := client.KPIHistory(ctx, r.ID, kpiID, reportType, priceType)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch KPI %d for %s", kpiID, r.Name)
		}
		if len(values) == 0 {
			logging.Debugf(ctx, "no KPI %d history for %s", kpiID, r.Name)
			continue
		}
		rows := make([]KPIRow, len(values))
		for i, v := range values {
			rows[i] = KPIRow{Name: r.Name, KPIValue: v}
		}
		histories = append(histories, rows)
	}
	return iterator.Reduce[[]KPIRow, []KPIRow](
		iterator.FromSlice(histories), []KPIRow{},
		func(rows []KPIRow, acc []KPIRow) []KPIRow { return append(acc, rows...) }), nil
}

// TopKPI selects the rows of the given year and returns at most n of them
// (all when n <= 0) with the highest values first.
func TopKPI(rows []KPIRow, year, n int) []KPIRow {
	var res []KPIRow
	for _, r := range rows {
		if r.Year == year {
			res = append(res, r)
		}
	}
	slices.SortStableFunc(res, func(a, b KPIRow) bool { return a.Value > b.Value })
	return top(res, n)
}

// LastYear is the latest year present in rows, or 0 if rows are empty.
func LastYear(rows []KPIRow) int {
	year := 0
	for _, r := range rows {
		if r.Year > year {
			year = r.Year
		}
	}
	return year
}

// PE is the price to earnings ratio of an instrument as of Date.
type PE struct {
	Name  string
	PE    float64 // rounded to 1 decimal
	Date  borsdata.Date
	Close float64
	EPS   float64
}

func (p PE) String() string {
	return fmt.Sprintf("PE for %s is %s with data from %s", p.Name, formatFloat(p.PE), p.Date)
}

// LatestPE divides the last close of the instrument by the earnings per share
// of its last R12 report.
func LatestPE(ctx context.Context, client *borsdata.Client, id int) (PE, error) {
	reports, err := client.InstrumentReports(ctx, id)
	if err != nil {
		return PE{}, errors.Annotate(err, "failed to compute PE")
	}
	last, ok := reports.R12.Last()
	if !ok {
		return PE{}, errors.Reason("instrument %d has no R12 reports", id)
	}
	eps := last.Float(EarningsPerShare)
	if eps == 0 {
		return PE{}, errors.Reason("instrument %d has no %s in R12 report %d/%d",
			id, EarningsPerShare, last.Year, last.Period)
	}
	prices, err := client.InstrumentStockPrices(ctx, id)
	if err != nil {
		return PE{}, errors.Annotate(err, "failed to compute PE")
	}
	if len(prices) == 0 {
		return PE{}, errors.Reason("instrument %d has no prices", id)
	}
	p := prices[len(prices)-1]
	name, err := client.InstrumentName(ctx, id)
	if err != nil {
		return PE{}, errors.Annotate(err, "failed to compute PE")
	}
	return PE{
		Name:  name.Name,
		PE:    round(p.Close/eps, 1),
		Date:  p.Date,
		Close: p.Close,
		EPS:   eps,
	}, nil
}

// MovingAverage of the closing prices over the trailing window. The first
// window-1 values are NaN.
func MovingAverage(prices []borsdata.StockPrice, window int) ([]float64, error) {
	if window < 1 {
		return nil, errors.Reason("window = %d must be positive", window)
	}
	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	res := make([]float64, len(prices))
	for i := range closes {
		if i+1 < window {
			res[i] = math.NaN()
			continue
		}
		res[i] = stat.Mean(closes[i+1-window:i+1], nil)
	}
	return res, nil
}

// AveragedPrice is a StockPrice with the moving average of its close.
type AveragedPrice struct {
	borsdata.StockPrice
	Average float64
}

// AveragedPriceHeader matches AveragedPrice.CSV.
func AveragedPriceHeader(window int) []string {
	return append(borsdata.StockPriceHeader(), fmt.Sprintf("sma%d", window))
}

// CSV implements table.Row. An undefined average is an empty cell.
func (p AveragedPrice) CSV() []string {
	avg := ""
	if !math.IsNaN(p.Average) {
		avg = formatFloat(p.Average)
	}
	return append(p.StockPrice.CSV(), avg)
}

// Cells implements table.CellsRow.
func (p AveragedPrice) Cells() []interface{} {
	var avg interface{}
	if !math.IsNaN(p.Average) {
		avg = p.Average
	}
	return append(p.StockPrice.Cells(), avg)
}

// WithMovingAverage pairs the prices with their MovingAverage.
func WithMovingAverage(prices []borsdata.StockPrice, window int) ([]AveragedPrice, error) {
	avg, err := MovingAverage(prices, window)
	if err != nil {
		return nil, err
	}
	res := make([]AveragedPrice, len(prices))
	for i, p := range prices {
		res[i] = AveragedPrice{StockPrice: p, Average: avg[i]}
	}
	return res, nil
}
