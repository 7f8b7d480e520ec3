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
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stockparfait/errors"
)

// InstrumentType is the kind of a tradable security or index.
type InstrumentType int

const (
	Stock InstrumentType = iota
	Preferred
	Index
	Stock2
	SectorIndex
	BranchIndex
)

var instrumentTypeNames = [...]string{
	Stock:       "Stock",
	Preferred:   "Preferred",
	Index:       "Index",
	Stock2:      "Stock2",
	SectorIndex: "SectorIndex",
	BranchIndex: "BranchIndex",
}

// ParseInstrumentType converts the API's integer code to InstrumentType.
func ParseInstrumentType(code int) (InstrumentType, error) {
	if code < 0 || code >= len(instrumentTypeNames) {
		return 0, errors.Reason("unrecognized instrument type code %d", code)
	}
	return InstrumentType(code), nil
}

func (t InstrumentType) String() string {
	if t < 0 || int(t) >= len(instrumentTypeNames) {
		return "InstrumentType(" + strconv.Itoa(int(t)) + ")"
	}
	return instrumentTypeNames[t]
}

// IsIndex is true for index-like instruments, which have no sector or branch.
func (t InstrumentType) IsIndex() bool {
	switch t {
	case Index, SectorIndex, BranchIndex:
		return true
	}
	return false
}

// UnmarshalJSON implements json.Unmarshaler and rejects unknown codes,
// including null.
func (t *InstrumentType) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return errors.Reason("unrecognized instrument type code null")
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return errors.Annotate(err, "instrument type must be an integer")
	}
	tp, err := ParseInstrumentType(code)
	if err != nil {
		return err
	}
	*t = tp
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t InstrumentType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(t))), nil
}

// Instrument is a tradable security or index. SectorID and BranchID are nil
// for index-like instruments.
type Instrument struct {
	ID                 int            `json:"insId"`
	Name               string         `json:"name"`
	URLName            string         `json:"urlName"`
	Type               InstrumentType `json:"instrument"`
	ISIN               string         `json:"isin"`
	Ticker             string         `json:"ticker"`
	Yahoo              string         `json:"yahoo"`
	SectorID           *int           `json:"sectorId"`
	MarketID           int            `json:"marketId"`
	BranchID           *int           `json:"branchId"`
	CountryID          int            `json:"countryId"`
	ListingDate        Date           `json:"listingDate"`
	StockPriceCurrency string         `json:"stockPriceCurrency"`
	ReportCurrency     string         `json:"reportCurrency"`
}

// UnmarshalJSON implements json.Unmarshaler. The instrument type is required:
// a missing or null "instrument" key is an error.
func (i *Instrument) UnmarshalJSON(data []byte) error {
	type plain Instrument
	aux := struct {
		*plain
		Type *InstrumentType `json:"instrument"`
	}{plain: (*plain)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Type == nil {
		return errors.Reason("unrecognized instrument type code null for instrument %d", i.ID)
	}
	i.Type = *aux.Type
	return nil
}

// Market is a reference row for a trading venue segment, e.g. "Large Cap".
type Market struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	CountryID    int    `json:"countryId"`
	IsIndex      bool   `json:"isIndex"`
	ExchangeName string `json:"exchangeName"`
}

// Country reference row.
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Sector reference row.
type Sector struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Branch reference row; a branch belongs to a sector.
type Branch struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	SectorID int    `json:"sectorId"`
}

// Reference is the common view of the lookup tables used to resolve ids to
// display names.
type Reference interface {
	RefID() int
	RefName() string
}

func (m Market) RefID() int      { return m.ID }
func (m Market) RefName() string { return m.Name }
func (c Country) RefID() int     { return c.ID }
func (c Country) RefName() string { return c.Name }
func (s Sector) RefID() int      { return s.ID }
func (s Sector) RefName() string { return s.Name }
func (b Branch) RefID() int      { return b.ID }
func (b Branch) RefName() string { return b.Name }

// StockPrice is one daily price bar. Missing numeric values are 0.
type StockPrice struct {
	Date   Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// StockPriceHeader is the column header matching StockPrice.CSV.
func StockPriceHeader() []string {
	return []string{"date", "open", "high", "low", "close", "volume"}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CSV implements table.Row.
func (p StockPrice) CSV() []string {
	return []string{
		p.Date.String(),
		formatFloat(p.Open),
		formatFloat(p.High),
		formatFloat(p.Low),
		formatFloat(p.Close),
		formatFloat(p.Volume),
	}
}

// Cells implements table.CellsRow.
func (p StockPrice) Cells() []interface{} {
	return []interface{}{p.Date.String(), p.Open, p.High, p.Low, p.Close, p.Volume}
}

// LatestStockPrice is a price bar of a specific instrument, as returned by the
// all-instruments endpoints.
type LatestStockPrice struct {
	InstrumentID int
	StockPrice
}

// LatestStockPriceHeader is the column header matching LatestStockPrice.CSV.
func LatestStockPriceHeader() []string {
	return append([]string{"ins_id"}, StockPriceHeader()...)
}

// CSV implements table.Row.
func (p LatestStockPrice) CSV() []string {
	return append([]string{strconv.Itoa(p.InstrumentID)}, p.StockPrice.CSV()...)
}

// KPIValue is a single point of a KPI history.
type KPIValue struct {
	Year   int
	Period int
	Value  float64
}

// KPIValueHeader is the column header matching KPIValue.CSV.
func KPIValueHeader() []string {
	return []string{"year", "period", "kpi_value"}
}

// CSV implements table.Row.
func (v KPIValue) CSV() []string {
	return []string{strconv.Itoa(v.Year), strconv.Itoa(v.Period), formatFloat(v.Value)}
}

func (v KPIValue) Cells() []interface{} {
	return []interface{}{v.Year, v.Period, v.Value}
}

// KPISummary is the history of one KPI within a summary response.
type KPISummary struct {
	KPIID  int
	Values []KPIValue
}

// InstrumentUpdate records when the instrument's data last changed.
type InstrumentUpdate struct {
	InstrumentID int    `json:"insId"`
	UpdatedAt    string `json:"updatedAt"`
}

// StockSplit is a split or reverse split event.
type StockSplit struct {
	InstrumentID int    `json:"instrumentId"`
	SplitType    string `json:"splitType"`
	Ratio        string `json:"ratio"`
	SplitDate    Date   `json:"splitDate"`
}

// ReportMetadata describes one report field.
type ReportMetadata struct {
	Property   string `json:"reportPropery"` // sic, as spelled by the API
	NameSv     string `json:"nameSv"`
	NameEn     string `json:"nameEn"`
	Format     string `json:"format"`
	IsCurrency bool   `json:"isCurrency"`
}

// Translation maps a translation key to its Swedish and English names.
type Translation struct {
	Key    string `json:"translationKey"`
	NameSv string `json:"nameSv"`
	NameEn string `json:"nameEn"`
}

// Value is a report cell: float64, string or bool.
type Value interface{}

// FormatValue renders a report cell for CSV and text output.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return "0"
	case float64:
		return formatFloat(x)
	case string:
		return x
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", x)
	}
}
