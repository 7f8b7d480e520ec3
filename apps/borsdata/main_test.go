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

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stockparfait/borsdata/borsdata"
	"github.com/stockparfait/borsdata/ratelimit"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

const (
	countriesJSON   = `{"countries":[{"id":1,"name":"Sverige"},{"id":2,"name":"Norge"}]}`
	branchesJSON    = `{"branches":[{"id":18,"name":"Industrimaskiner","sectorId":3}]}`
	sectorsJSON     = `{"sectors":[{"id":3,"name":"Industri"}]}`
	marketsJSON     = `{"markets":[{"id":1,"name":"Large Cap","countryId":1},{"id":6,"name":"Index","countryId":1,"isIndex":true}]}`
	instrumentsJSON = `{"instruments":[
{"insId":3,"name":"ABB","instrument":0,"ticker":"ABB","isin":"CH0012221716","marketId":1,"countryId":1,"sectorId":3,"branchId":18},
{"insId":643,"name":"OMXS30","instrument":2,"ticker":"OMXS30","marketId":6,"countryId":1}]}`
)

func writeFile(path, content string) {
	So(testutil.WriteFile(path, content), ShouldBeNil)
}

func TestMain(t *testing.T) {
	t.Parallel()

	Convey("parseFlags", t, func() {
		Convey("instruments", func() {
			flags, err := parseFlags([]string{
				"-cache", "path/to/cache", "-log-level", "warning", "-instruments"})
			So(err, ShouldBeNil)
			So(flags.Cache, ShouldEqual, "path/to/cache")
			So(flags.LogLevel, ShouldEqual, logging.Warning)
			So(flags.Instruments, ShouldBeTrue)
			So(flags.ReportType, ShouldEqual, "year")
			So(flags.Days, ShouldEqual, 1)
		})

		Convey("top performers", func() {
			flags, err := parseFlags([]string{"-top", "10", "-days", "5",
				"-market", "Large Cap", "-country", "Sverige"})
			So(err, ShouldBeNil)
			So(flags.Top, ShouldEqual, 10)
			So(flags.Days, ShouldEqual, 5)
			So(flags.Market, ShouldEqual, "Large Cap")
		})

		Convey("errors", func() {
			_, err := parseFlags([]string{})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-prices", "3", "-pe", "3"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-kpi", "2", "-market", "Large Cap"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-export", "out", "-date", "yesterday"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-kpi", "2", "-market", "Large Cap",
				"-country", "Sverige", "-year", "last"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("printData", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		client := borsdata.NewClient("testkey").
			WithBaseURL(server.URL()).
			WithHTTPClient(server.Client()).
			WithLimiter(ratelimit.NewInterval(0))
		ctx := context.Background()
		references := []string{countriesJSON, branchesJSON, sectorsJSON, marketsJSON, instrumentsJSON}

		Convey("instruments", func() {
			server.ResponseBody = references
			flags, err := parseFlags([]string{"-instruments", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
name,ins_id,ticker,isin,instrument_type,market,country,sector,branch
ABB,3,ABB,CH0012221716,Stock,Large Cap,Sverige,Industri,Industrimaskiner
OMXS30,643,OMXS30,,Index,Index,Sverige,N/A,N/A
`)
		})

		Convey("prices with a moving average", func() {
			server.ResponseBody = []string{`{"instrument":3,"stockPricesList":[
{"d":"2021-01-05","o":1,"h":2,"l":1,"c":3,"v":10},
{"d":"2021-01-04","o":1,"h":2,"l":1,"c":1,"v":20}]}`}
			flags, err := parseFlags([]string{"-prices", "3", "-sma", "2", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/instruments/3/stockprices")
			So("\n"+buf.String(), ShouldEqual, `
date,open,high,low,close,volume,sma2
2021-01-04,1,2,1,1,20,
2021-01-05,1,2,1,3,10,2
`)
		})

		Convey("reports", func() {
			server.ResponseBody = []string{`{"instrument":3,"reports":[
{"year":2020,"period":4,"revenues":10,"profit_Before_Tax":null}]}`}
			flags, err := parseFlags([]string{"-reports", "3", "-report-type", "r12"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/instruments/3/reports/r12")
			So("\n"+buf.String(), ShouldEqual, `
year | period | profit_before_tax | revenues
---- | ------ | ----------------- | --------
2020 |      4 |                 0 |       10
`)
		})

		Convey("top performers", func() {
			server.ResponseBody = append(references,
				`{"stockPricesList":[{"d":"2021-01-04","c":100},{"d":"2021-01-05","c":110}]}`)
			flags, err := parseFlags([]string{"-top", "5",
				"-market", "Large Cap", "-country", "Sverige", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
stock,pct_change
ABB,10.00
`)
		})

		Convey("ranked KPI", func() {
			server.ResponseBody = append(references,
				`{"values":[{"y":2020,"p":5,"v":20.5},{"y":2019,"p":5,"v":18}]}`)
			flags, err := parseFlags([]string{"-kpi", "2", "-year", "2019",
				"-market", "Large Cap", "-country", "Sverige", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/instruments/3/kpis/2/year/mean/history")
			So("\n"+buf.String(), ShouldEqual, `
name,year,period,kpi_value
ABB,2019,5,18
`)
		})

		Convey("KPI of the latest year", func() {
			server.ResponseBody = append(references,
				`{"values":[{"y":2020,"p":5,"v":20.5},{"y":2019,"p":5,"v":18}]}`)
			flags, err := parseFlags([]string{"-kpi", "2", "-year", "latest",
				"-market", "Large Cap", "-country", "Sverige", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
name,year,period,kpi_value
ABB,2020,5,20.5
`)
		})

		Convey("P/E", func() {
			server.ResponseBody = []string{
				`{"reportsYear":[],"reportsQuarter":[],"reportsR12":[{"year":2020,"period":4,"earnings_Per_Share":2}]}`,
				`{"stockPricesList":[{"d":"2021-01-05","c":25}]}`,
				instrumentsJSON,
			}
			flags, err := parseFlags([]string{"-pe", "3"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, "PE for ABB is 12.5 with data from 2021-01-05\n")
		})

		Convey("export", func() {
			dir := t.TempDir()
			server.ResponseBody = append(references,
				`{"stockPricesList":[{"d":"2021-01-05","c":25}]}`,
				`{"reportsYear":[],"reportsQuarter":[],"reportsR12":[]}`)
			flags, err := parseFlags([]string{"-export", dir, "-workbooks",
				"-market", "Large Cap", "-country", "Sverige", "-date", "2021-01-06"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, client, &buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, filepath.Join(dir, "instrument_with_meta_data.csv")+"\n"+
				filepath.Join(dir, "instrument_with_meta_data.xlsx")+"\n"+
				filepath.Join(dir, "2021-01-06", "sverige", "large_cap", "abb.xlsx")+"\n")
		})
	})
}

func TestConfig(t *testing.T) {
	Convey("parseConfig", t, func() {
		t.Setenv(KeyEnv, "")
		dir := t.TempDir()

		Convey("from the config file", func() {
			writeFile(filepath.Join(dir, "config.toml"), `key = "testKey"
max_count = 100
calls_per_second = 2
`)
			c, err := parseConfig(dir)
			So(err, ShouldBeNil)
			So(c.Key, ShouldEqual, "testKey")
			So(c.MaxCount, ShouldEqual, 100)
			So(c.CallsPerSecond, ShouldEqual, 2)
		})

		Convey("from the environment", func() {
			t.Setenv(KeyEnv, "envKey")
			c, err := parseConfig(dir)
			So(err, ShouldBeNil)
			So(c.Key, ShouldEqual, "envKey")
		})

		Convey("from the .env file", func() {
			writeFile(filepath.Join(dir, ".env"), KeyEnv+"=dotenvKey\n")
			c, err := parseConfig(dir)
			So(err, ShouldBeNil)
			So(c.Key, ShouldEqual, "dotenvKey")
		})

		Convey("no key", func() {
			_, err := parseConfig(dir)
			So(err, ShouldNotBeNil)
		})

		Convey("bad config file", func() {
			writeFile(filepath.Join(dir, "config.toml"), `key = `)
			_, err := parseConfig(dir)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Config.Client sends the configured parameters", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{`{"countries":[]}`}
		c := &Config{Key: "testKey", URL: server.URL(), MaxCount: 100}
		client := c.Client().WithHTTPClient(server.Client())
		_, err := client.Countries(context.Background())
		So(err, ShouldBeNil)
		So(server.RequestPath, ShouldEqual, "/countries")
		So(server.RequestQuery.Get("authKey"), ShouldEqual, "testKey")
		So(server.RequestQuery.Get("maxCount"), ShouldEqual, "100")
		So(server.RequestQuery.Get("maxYearCount"), ShouldEqual, "20")
	})
}
