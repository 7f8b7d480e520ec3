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
	"net/url"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"golang.org/x/exp/slices"
)

// priceJSON is the terse wire format of a price bar. Any value may be null.
type priceJSON struct {
	InstrumentID *int     `json:"i"`
	Date         Date     `json:"d"`
	Open         *float64 `json:"o"`
	High         *float64 `json:"h"`
	Low          *float64 `json:"l"`
	Close        *float64 `json:"c"`
	Volume       *float64 `json:"v"`
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func (p priceJSON) price() StockPrice {
	return StockPrice{
		Date:   p.Date,
		Open:   orZero(p.Open),
		High:   orZero(p.High),
		Low:    orZero(p.Low),
		Close:  orZero(p.Close),
		Volume: orZero(p.Volume),
	}
}

func (p priceJSON) latest() LatestStockPrice {
	var id int
	if p.InstrumentID != nil {
		id = *p.InstrumentID
	}
	return LatestStockPrice{InstrumentID: id, StockPrice: p.price()}
}

type pricesResponse struct {
	Prices []priceJSON `json:"stockPricesList"`
}

// SortPrices sorts prices in place by date and drops rows with a repeated
// date, keeping the first one. It returns the resulting slice.
func SortPrices(prices []StockPrice) []StockPrice {
	slices.SortStableFunc(prices, func(a, b StockPrice) bool {
		return a.Date.Before(b.Date)
	})
	res := prices[:0]
	for i, p := range prices {
		if i > 0 && p.Date == res[len(res)-1].Date {
			continue
		}
		res = append(res, p)
	}
	return res
}

// InstrumentStockPrices fetches the daily prices of the instrument, sorted
// strictly ascending by date. A price without a date is an error.
func (c *Client) InstrumentStockPrices(ctx context.Context, id int) ([]StockPrice, error) {
	var res pricesResponse
	if err := c.get(ctx, pathf("instruments/%d/stockprices", id), nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch stock prices for instrument %d", id)
	}
	prices := make([]StockPrice, len(res.Prices))
	for i, p := range res.Prices {
		if p.Date.IsZero() {
			return nil, errors.Reason("stock price #%d of instrument %d has no date", i, id)
		}
		prices[i] = p.price()
	}
	n := len(prices)
	prices = SortPrices(prices)
	if dropped := n - len(prices); dropped > 0 {
		logging.Warningf(ctx, "dropped %d stock prices of instrument %d with repeated dates",
			dropped, id)
	}
	return prices, nil
}

func latestPrices(res *pricesResponse) []LatestStockPrice {
	prices := make([]LatestStockPrice, len(res.Prices))
	for i, p := range res.Prices {
		prices[i] = p.latest()
	}
	return prices
}

// LatestStockPrices fetches the last trading day's price of every instrument,
// in the server's order.
func (c *Client) LatestStockPrices(ctx context.Context) ([]LatestStockPrice, error) {
	var res pricesResponse
	if err := c.get(ctx, "instruments/stockprices/last", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch latest stock prices")
	}
	return latestPrices(&res), nil
}

// StockPricesForDate fetches the prices of every instrument traded on the
// given date, in the server's order.
func (c *Client) StockPricesForDate(ctx context.Context, date Date) ([]LatestStockPrice, error) {
	var res pricesResponse
	q := url.Values{"date": []string{date.String()}}
	if err := c.get(ctx, "instruments/stockprices/date", q, &res); err != nil {
		return nil, annotate(err, "failed to fetch stock prices for %s", date)
	}
	return latestPrices(&res), nil
}

// StockSplits fetches the recent stock splits of all instruments.
func (c *Client) StockSplits(ctx context.Context) ([]StockSplit, error) {
	var res struct {
		Splits []StockSplit `json:"stockSplitList"`
	}
	if err := c.get(ctx, "instruments/stocksplits", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch stock splits")
	}
	return res.Splits, nil
}
