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

// Package enrich joins instruments with the market, country, sector and branch
// reference tables into denormalized records.
package enrich

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stockparfait/borsdata/borsdata"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// NotAvailable is the sector and branch name of index-like instruments.
const NotAvailable = "N/A"

// Reference table names, as reported in errors.
const (
	MarketsTable   = "markets"
	CountriesTable = "countries"
	SectorsTable   = "sectors"
	BranchesTable  = "branches"
)

// UnresolvedReferenceError means an instrument refers to an id missing from a
// reference table. Absent is set when the instrument has no id at all where
// one is required.
type UnresolvedReferenceError struct {
	Table        string
	ID           int
	InstrumentID int
	Absent       bool
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Absent {
		return fmt.Sprintf("unresolved reference: instrument %d has no %s id",
			e.InstrumentID, e.Table)
	}
	return fmt.Sprintf("unresolved reference: id %d of instrument %d not found in %s",
		e.ID, e.InstrumentID, e.Table)
}

// IntegrityError means a reference table lists the same id more than once.
type IntegrityError struct {
	Table string
	ID    int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: id %d appears more than once in %s",
		e.ID, e.Table)
}

// Lookup resolves the ids of one reference table to names.
type Lookup struct {
	table string
	names map[int]string
}

// NewLookup indexes the rows by id. Duplicate ids are an *IntegrityError.
func NewLookup[R borsdata.Reference](table string, rows []R) (*Lookup, error) {
	l := &Lookup{table: table, names: make(map[int]string, len(rows))}
	for _, r := range rows {
		if _, ok := l.names[r.RefID()]; ok {
			return nil, &IntegrityError{Table: table, ID: r.RefID()}
		}
		l.names[r.RefID()] = r.RefName()
	}
	return l, nil
}

// Name resolves id on behalf of the instrument.
func (l *Lookup) Name(id, instrumentID int) (string, error) {
	name, ok := l.names[id]
	if !ok {
		return "", &UnresolvedReferenceError{Table: l.table, ID: id, InstrumentID: instrumentID}
	}
	return name, nil
}

// OptionalName resolves an optional id; a nil id is unresolved.
func (l *Lookup) OptionalName(id *int, instrumentID int) (string, error) {
	if id == nil {
		return "", &UnresolvedReferenceError{Table: l.table, InstrumentID: instrumentID, Absent: true}
	}
	return l.Name(*id, instrumentID)
}

// References are the four lookup tables.
type References struct {
	Markets   []borsdata.Market
	Countries []borsdata.Country
	Sectors   []borsdata.Sector
	Branches  []borsdata.Branch
}

// Index is References indexed for lookups.
type Index struct {
	Markets   *Lookup
	Countries *Lookup
	Sectors   *Lookup
	Branches  *Lookup
}

// NewIndex builds the lookups, failing on duplicate ids.
func NewIndex(refs *References) (*Index, error) {
	var idx Index
	var err error
	if idx.Markets, err = NewLookup(MarketsTable, refs.Markets); err != nil {
		return nil, err
	}
	if idx.Countries, err = NewLookup(CountriesTable, refs.Countries); err != nil {
		return nil, err
	}
	if idx.Sectors, err = NewLookup(SectorsTable, refs.Sectors); err != nil {
		return nil, err
	}
	if idx.Branches, err = NewLookup(BranchesTable, refs.Branches); err != nil {
		return nil, err
	}
	return &idx, nil
}

// Record is an instrument with its reference ids replaced by names.
type Record struct {
	ID          int
	Name        string
	Ticker      string
	ISIN        string
	Type        borsdata.InstrumentType
	Market      string
	Country     string
	Sector      string // NotAvailable for index-like instruments
	Branch      string // NotAvailable for index-like instruments
	ListingDate borsdata.Date
}

// Header is the column header matching Record.CSV.
func Header() []string {
	return []string{"name", "ins_id", "ticker", "isin", "instrument_type",
		"market", "country", "sector", "branch"}
}

// CSV implements table.Row.
func (r Record) CSV() []string {
	return []string{
		r.Name,
		strconv.Itoa(r.ID),
		r.Ticker,
		r.ISIN,
		r.Type.String(),
		r.Market,
		r.Country,
		r.Sector,
		r.Branch,
	}
}

// Cells implements table.CellsRow.
func (r Record) Cells() []interface{} {
	return []interface{}{r.Name, r.ID, r.Ticker, r.ISIN, r.Type.String(),
		r.Market, r.Country, r.Sector, r.Branch}
}

// Resolve builds the record of a single instrument.
func (idx *Index) Resolve(ins *borsdata.Instrument) (Record, error) {
	r := Record{
		ID:          ins.ID,
		Name:        ins.Name,
		Ticker:      ins.Ticker,
		ISIN:        ins.ISIN,
		Type:        ins.Type,
		Sector:      NotAvailable,
		Branch:      NotAvailable,
		ListingDate: ins.ListingDate,
	}
	var err error
	if r.Market, err = idx.Markets.Name(ins.MarketID, ins.ID); err != nil {
		return Record{}, err
	}
	if r.Country, err = idx.Countries.Name(ins.CountryID, ins.ID); err != nil {
		return Record{}, err
	}
	if ins.Type.IsIndex() {
		return r, nil
	}
	if r.Sector, err = idx.Sectors.OptionalName(ins.SectorID, ins.ID); err != nil {
		return Record{}, err
	}
	if r.Branch, err = idx.Branches.OptionalName(ins.BranchID, ins.ID); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Join resolves every instrument, preserving their order. The first
// unresolved reference aborts the join.
func Join(refs *References, instruments []borsdata.Instrument) ([]Record, error) {
	idx, err := NewIndex(refs)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(instruments))
	for i := range instruments {
		r, err := idx.Resolve(&instruments[i])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// FetchReferences downloads the four reference tables.
func FetchReferences(ctx context.Context, client *borsdata.Client) (*References, error) {
	var refs References
	var err error
	if refs.Countries, err = client.Countries(ctx); err != nil {
		return nil, errors.Annotate(err, "failed to fetch reference tables")
	}
	if refs.Branches, err = client.Branches(ctx); err != nil {
		return nil, errors.Annotate(err, "failed to fetch reference tables")
	}
	if refs.Sectors, err = client.Sectors(ctx); err != nil {
		return nil, errors.Annotate(err, "failed to fetch reference tables")
	}
	if refs.Markets, err = client.Markets(ctx); err != nil {
		return nil, errors.Annotate(err, "failed to fetch reference tables")
	}
	return &refs, nil
}

// Fetch downloads the reference tables and the instruments and joins them.
func Fetch(ctx context.Context, client *borsdata.Client) ([]Record, error) {
	refs, err := FetchReferences(ctx, client)
	if err != nil {
		return nil, err
	}
	instruments, err := client.Instruments(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch instruments")
	}
	records, err := Join(refs, instruments)
	if err != nil {
		return nil, errors.Annotate(err, "failed to join instruments with references")
	}
	logging.Infof(ctx, "Borsdata: resolved %d instruments", len(records))
	return records, nil
}

// Filter returns the records in the given market and country, in order.
func Filter(records []Record, market, country string) []Record {
	var res []Record
	for _, r := range records {
		if r.Market == market && r.Country == country {
			res = append(res, r)
		}
	}
	return res
}
