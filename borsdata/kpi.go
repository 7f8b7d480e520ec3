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
)

// Report types accepted by the KPI and report endpoints. The client passes
// them through without validation.
const (
	ReportYear    = "year"
	ReportR12     = "r12"
	ReportQuarter = "quarter"
)

// Price types accepted by the KPI history endpoint.
const (
	PriceMean = "mean"
	PriceHigh = "high"
	PriceLow  = "low"
)

type kpiValueJSON struct {
	Year   int      `json:"y"`
	Period int      `json:"p"`
	Value  *float64 `json:"v"`
}

func kpiValues(js []kpiValueJSON) []KPIValue {
	res := make([]KPIValue, len(js))
	for i, v := range js {
		res[i] = KPIValue{Year: v.Year, Period: v.Period, Value: orZero(v.Value)}
	}
	return res
}

// KPIHistory fetches the history of one KPI of the instrument. A null value
// is reported as 0.
func (c *Client) KPIHistory(ctx context.Context, insID, kpiID int, reportType, priceType string) ([]KPIValue, error) {
	var res struct {
		Values []kpiValueJSON `json:"values"`
	}
	path := pathf("instruments/%d/kpis/%d/%s/%s/history", insID, kpiID, reportType, priceType)
	if err := c.get(ctx, path, nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch KPI %d history for instrument %d",
			kpiID, insID)
	}
	return kpiValues(res.Values), nil
}

// KPISummary fetches the recent history of all KPIs of the instrument.
func (c *Client) KPISummary(ctx context.Context, insID int, reportType string) ([]KPISummary, error) {
	var res struct {
		KPIs []struct {
			KPIID  int            `json:"KpiId"`
			Values []kpiValueJSON `json:"values"`
		} `json:"kpis"`
	}
	path := pathf("instruments/%d/kpis/%s/summary", insID, reportType)
	if err := c.get(ctx, path, nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch KPI summary for instrument %d", insID)
	}
	summary := make([]KPISummary, len(res.KPIs))
	for i, k := range res.KPIs {
		summary[i] = KPISummary{KPIID: k.KPIID, Values: kpiValues(k.Values)}
	}
	return summary, nil
}
