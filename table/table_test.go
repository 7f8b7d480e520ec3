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

package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	. "github.com/smartystreets/goconvey/convey"
)

type testRow struct {
	Ticker string
	Close  float64
}

func (r testRow) CSV() []string {
	return []string{r.Ticker, strconv.FormatFloat(r.Close, 'f', -1, 64)}
}

type typedRow struct {
	testRow
}

func (r typedRow) Cells() []interface{} { return []interface{}{r.Ticker, r.Close} }

func TestTable(t *testing.T) {
	t.Parallel()

	Convey("Table methods work", t, func() {
		t := NewTable("Ticker", "Close")
		headless := NewTable()

		So(t.Header, ShouldResemble, []string{"Ticker", "Close"})
		t.AddRow(testRow{"ERIC B", 61.5}, testRow{"VOLV B", 235})
		headless.AddRow(testRow{"ERIC B", 61.5}, testRow{"VOLV B", 235})

		Convey("AddRow worked", func() {
			So(len(t.Rows), ShouldEqual, 2)
			So(len(headless.Rows), ShouldEqual, 2)
		})

		Convey("WriteCSV", func() {
			Convey("Default Params", func() {
				var buf bytes.Buffer
				So(t.WriteCSV(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
Ticker,Close
ERIC B,61.5
VOLV B,235
`)
			})

			Convey("Default Params, headless", func() {
				var buf bytes.Buffer
				So(headless.WriteCSV(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
ERIC B,61.5
VOLV B,235
`)
			})

			Convey("Limited rows, no header", func() {
				var buf bytes.Buffer
				So(t.WriteCSV(&buf, Params{Rows: 1, NoHeader: true}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
ERIC B,61.5
`)
			})
		})

		Convey("WriteText", func() {
			Convey("Default Params", func() {
				var buf bytes.Buffer
				So(t.WriteText(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
Ticker | Close
------ | -----
ERIC B |  61.5
VOLV B |   235
`)
			})

			Convey("Default Params, headless", func() {
				var buf bytes.Buffer
				So(headless.WriteText(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
ERIC B | 61.5
VOLV B |  235
`)
			})

			Convey("Limited rows and width, no header", func() {
				var buf bytes.Buffer
				So(t.WriteText(&buf, Params{Rows: 1, NoHeader: true, MaxColWidth: 4}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
ER.. | 61.5
`)
			})

			Convey("Invalid width", func() {
				var buf bytes.Buffer
				So(t.WriteText(&buf, Params{MaxColWidth: 3}), ShouldNotBeNil)
			})

			Convey("Mismatched row size", func() {
				var buf bytes.Buffer
				bad := NewTable("Ticker")
				bad.AddRow(testRow{"ERIC B", 61.5})
				So(bad.WriteText(&buf, Params{}), ShouldNotBeNil)
			})
		})
	})
}

func TestWorkbook(t *testing.T) {
	t.Parallel()

	Convey("Workbook writes one sheet per table", t, func() {
		prices := NewNamedTable("stock_prices", "ticker", "close")
		prices.AddRow(typedRow{testRow{"ERIC B", 61.5}}, typedRow{testRow{"VOLV B", 235}})
		names := NewNamedTable("names")
		names.AddRow(testRow{"ERIC B", 1})

		Convey("in memory", func() {
			wb := NewWorkbook()
			defer wb.Close()
			So(wb.AddTable(prices, Params{}), ShouldBeNil)
			So(wb.AddTable(names, Params{}), ShouldBeNil)
			So(wb.Sheets(), ShouldResemble, []string{"stock_prices", "names"})

			var buf bytes.Buffer
			So(wb.Write(&buf), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()
			So(f.GetSheetList(), ShouldResemble, []string{"stock_prices", "names"})

			rows, err := f.GetRows("stock_prices")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]string{
				{"ticker", "close"},
				{"ERIC B", "61.5"},
				{"VOLV B", "235"},
			})
			rows, err = f.GetRows("names")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]string{{"ERIC B", "1"}})

			v, err := f.GetCellValue("stock_prices", "B2", excelize.Options{RawCellValue: true})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "61.5")
		})

		Convey("duplicate and unnamed sheets are rejected", func() {
			wb := NewWorkbook()
			defer wb.Close()
			So(wb.AddTable(prices, Params{}), ShouldBeNil)
			So(wb.AddTable(prices, Params{}), ShouldNotBeNil)
			So(wb.AddTable(NewTable("a"), Params{}), ShouldNotBeNil)
		})

		Convey("empty workbook is not saved", func() {
			wb := NewWorkbook()
			defer wb.Close()
			var buf bytes.Buffer
			So(wb.Write(&buf), ShouldNotBeNil)
		})

		Convey("to a file", func() {
			path := filepath.Join(t.TempDir(), "prices.xlsx")
			So(WriteWorkbook(path, Params{NoHeader: true}, prices), ShouldBeNil)
			_, err := os.Stat(path)
			So(err, ShouldBeNil)

			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := f.GetRows("stock_prices")
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0][0], ShouldEqual, "ERIC B")
		})
	})
}
