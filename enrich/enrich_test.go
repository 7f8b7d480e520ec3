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

package enrich

import (
	"context"
	"testing"

	"github.com/stockparfait/borsdata/borsdata"
	"github.com/stockparfait/borsdata/ratelimit"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(i int) *int { return &i }

func testReferences() *References {
	return &References{
		Markets: []borsdata.Market{
			{ID: 1, Name: "Large Cap", CountryID: 1},
			{ID: 6, Name: "Index", CountryID: 1, IsIndex: true},
		},
		Countries: []borsdata.Country{{ID: 1, Name: "Sverige"}, {ID: 2, Name: "Norge"}},
		Sectors:   []borsdata.Sector{{ID: 3, Name: "Industri"}, {ID: 4, Name: "Finans"}},
		Branches: []borsdata.Branch{
			{ID: 18, Name: "Industrimaskiner", SectorID: 3},
			{ID: 40, Name: "Banker", SectorID: 4},
		},
	}
}

func testInstruments() []borsdata.Instrument {
	return []borsdata.Instrument{
		{ID: 2, Name: "ABB", Ticker: "ABB", ISIN: "CH0012221716", Type: borsdata.Stock,
			MarketID: 1, CountryID: 1, SectorID: intPtr(3), BranchID: intPtr(18)},
		{ID: 7, Name: "DNB", Ticker: "DNB", ISIN: "NO0010031479", Type: borsdata.Stock,
			MarketID: 1, CountryID: 2, SectorID: intPtr(4), BranchID: intPtr(40)},
		// Sector and branch ids of an index are ignored even when present.
		{ID: 643, Name: "OMXS30", Ticker: "OMXS30", Type: borsdata.Index,
			MarketID: 6, CountryID: 1, SectorID: intPtr(99), BranchID: intPtr(99)},
	}
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	Convey("Join", t, func() {
		refs := testReferences()

		Convey("resolves all references", func() {
			records, err := Join(refs, testInstruments())
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 3)
			So(records, ShouldResemble, []Record{
				{ID: 2, Name: "ABB", Ticker: "ABB", ISIN: "CH0012221716", Type: borsdata.Stock,
					Market: "Large Cap", Country: "Sverige", Sector: "Industri",
					Branch: "Industrimaskiner"},
				{ID: 7, Name: "DNB", Ticker: "DNB", ISIN: "NO0010031479", Type: borsdata.Stock,
					Market: "Large Cap", Country: "Norge", Sector: "Finans", Branch: "Banker"},
				{ID: 643, Name: "OMXS30", Ticker: "OMXS30", Type: borsdata.Index,
					Market: "Index", Country: "Sverige", Sector: NotAvailable,
					Branch: NotAvailable},
			})
			So(records[0].CSV(), ShouldResemble, []string{
				"ABB", "2", "ABB", "CH0012221716", "Stock", "Large Cap", "Sverige",
				"Industri", "Industrimaskiner"})
			So(len(Header()), ShouldEqual, len(records[0].CSV()))
		})

		Convey("index-like instruments without sector and branch", func() {
			for _, tp := range []borsdata.InstrumentType{
				borsdata.Index, borsdata.SectorIndex, borsdata.BranchIndex} {
				records, err := Join(refs, []borsdata.Instrument{
					{ID: 1, Type: tp, MarketID: 6, CountryID: 1}})
				So(err, ShouldBeNil)
				So(records[0].Sector, ShouldEqual, NotAvailable)
				So(records[0].Branch, ShouldEqual, NotAvailable)
			}
		})

		Convey("unknown market is an unresolved reference", func() {
			ins := testInstruments()
			ins[1].MarketID = 5
			records, err := Join(refs, ins)
			So(records, ShouldBeNil)
			So(err, ShouldNotBeNil)
			uerr, ok := err.(*UnresolvedReferenceError)
			So(ok, ShouldBeTrue)
			So(*uerr, ShouldResemble, UnresolvedReferenceError{
				Table: MarketsTable, ID: 5, InstrumentID: 7})
			So(err.Error(), ShouldContainSubstring, "unresolved reference")
		})

		Convey("unknown country", func() {
			ins := testInstruments()
			ins[0].CountryID = 3
			_, err := Join(refs, ins)
			uerr, ok := err.(*UnresolvedReferenceError)
			So(ok, ShouldBeTrue)
			So(uerr.Table, ShouldEqual, CountriesTable)
		})

		Convey("stock without a branch id", func() {
			ins := testInstruments()
			ins[0].BranchID = nil
			_, err := Join(refs, ins)
			uerr, ok := err.(*UnresolvedReferenceError)
			So(ok, ShouldBeTrue)
			So(uerr.Table, ShouldEqual, BranchesTable)
			So(uerr.Absent, ShouldBeTrue)
		})

		Convey("duplicate reference ids", func() {
			refs.Sectors = append(refs.Sectors, borsdata.Sector{ID: 3, Name: "Dup"})
			_, err := Join(refs, testInstruments())
			ierr, ok := err.(*IntegrityError)
			So(ok, ShouldBeTrue)
			So(*ierr, ShouldResemble, IntegrityError{Table: SectorsTable, ID: 3})
		})
	})

	Convey("Filter", t, func() {
		records, err := Join(testReferences(), testInstruments())
		So(err, ShouldBeNil)
		f := Filter(records, "Large Cap", "Sverige")
		So(len(f), ShouldEqual, 1)
		So(f[0].Name, ShouldEqual, "ABB")
		So(Filter(records, "Mid Cap", "Sverige"), ShouldBeEmpty)
	})
}

func TestFetch(t *testing.T) {
	Convey("Fetch joins the downloaded tables", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{
			`{"countries":[{"id":1,"name":"Sverige"},{"id":2,"name":"Norge"}]}`,
			`{"branches":[{"id":18,"name":"Industrimaskiner","sectorId":3},{"id":40,"name":"Banker","sectorId":4}]}`,
			`{"sectors":[{"id":3,"name":"Industri"},{"id":4,"name":"Finans"}]}`,
			`{"markets":[{"id":1,"name":"Large Cap","countryId":1},{"id":6,"name":"Index","countryId":1,"isIndex":true}]}`,
			`{"instruments":[
{"insId":2,"name":"ABB","instrument":0,"ticker":"ABB","marketId":1,"countryId":1,"sectorId":3,"branchId":18},
{"insId":7,"name":"DNB","instrument":0,"ticker":"DNB","marketId":1,"countryId":2,"sectorId":4,"branchId":40},
{"insId":643,"name":"OMXS30","instrument":2,"ticker":"OMXS30","marketId":6,"countryId":1,"sectorId":null,"branchId":null}]}`,
		}
		client := borsdata.NewClient("testkey").
			WithBaseURL(server.URL()).
			WithHTTPClient(server.Client()).
			WithLimiter(ratelimit.NewInterval(0))

		records, err := Fetch(context.Background(), client)
		So(err, ShouldBeNil)
		So(server.RequestPath, ShouldEqual, "/instruments")
		So(len(records), ShouldEqual, 3)
		markets := []string{}
		countries := []string{}
		for _, r := range records {
			markets = append(markets, r.Market)
			countries = append(countries, r.Country)
		}
		So(markets, ShouldResemble, []string{"Large Cap", "Large Cap", "Index"})
		So(countries, ShouldResemble, []string{"Sverige", "Norge", "Sverige"})
		So(records[2].Sector, ShouldEqual, NotAvailable)
	})
}
