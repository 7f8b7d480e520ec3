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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/stockparfait/borsdata/analysis"
	"github.com/stockparfait/borsdata/borsdata"
	"github.com/stockparfait/borsdata/enrich"
	"github.com/stockparfait/borsdata/export"
	"github.com/stockparfait/borsdata/ratelimit"
	"github.com/stockparfait/borsdata/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

// KeyEnv is the environment variable holding the API key when the config
// file doesn't.
const KeyEnv = "BORSDATA_API_KEY"

// LatestYear is the -year value selecting the latest year of a KPI history.
const LatestYear = "latest"

type Flags struct {
	Cache    string // default: ~/.borsdata
	LogLevel logging.Level
	// Exactly one of the following must be present.
	Instruments bool
	Prices      int    // instrument id to print prices for
	Reports     int    // instrument id to print reports for
	KPI         int    // KPI id to print history for, with Market and Country
	Top         int    // number of top performers in Market and Country
	PE          int    // instrument id to print the P/E ratio for
	Export      string // directory to export instruments to

	Market     string // e.g. "Large Cap"
	Country    string // e.g. "Sverige"
	Days       int    // period of percent change for -top
	ReportType string // year, r12 or quarter
	PriceType  string // mean, high or low; for -kpi
	Year       string // rank -kpi values of this year, or "latest"; "" = print the history
	Rank       int    // number of ranked -kpi rows
	SMA        int    // moving average window for -prices; 0 = none
	Workbooks  bool   // with -export, also write per-instrument workbooks
	Date       string // with -export, the date directory; default: today
	CSV        bool   // dump CSV format; default: text.
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("borsdata", flag.ExitOnError)
	fs.StringVar(&flags.Cache, "cache",
		filepath.Join(os.Getenv("HOME"), ".borsdata"),
		"configuration path")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Instruments, "instruments", false,
		"print instruments with market, country, sector and branch names")
	fs.IntVar(&flags.Prices, "prices", 0, "instrument id to print stock prices for")
	fs.IntVar(&flags.Reports, "reports", 0, "instrument id to print reports for")
	fs.IntVar(&flags.KPI, "kpi", 0, "KPI id to print history for (requires -market, -country)")
	fs.IntVar(&flags.Top, "top", 0,
		"print this many top performers (requires -market, -country)")
	fs.IntVar(&flags.PE, "pe", 0, "instrument id to print the latest P/E ratio for")
	fs.StringVar(&flags.Export, "export", "", "directory to export instruments to")

	fs.StringVar(&flags.Market, "market", "", "market name, e.g. \"Large Cap\"")
	fs.StringVar(&flags.Country, "country", "", "country name, e.g. Sverige")
	fs.IntVar(&flags.Days, "days", 1, "number of trading days for -top")
	fs.StringVar(&flags.ReportType, "report-type", borsdata.ReportYear,
		"report type: year, r12 or quarter")
	fs.StringVar(&flags.PriceType, "price-type", borsdata.PriceMean,
		"KPI price type: mean, high or low")
	fs.StringVar(&flags.Year, "year", "",
		"rank -kpi values of this year, or of the latest one with \"latest\"")
	fs.IntVar(&flags.Rank, "rank", 5, "number of rows ranked by -year")
	fs.IntVar(&flags.SMA, "sma", 0, "add a moving average of this window to -prices")
	fs.BoolVar(&flags.Workbooks, "workbooks", false,
		"with -export, write a workbook per instrument")
	fs.StringVar(&flags.Date, "date", "", "with -export, date directory as YYYY-MM-DD")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	kinds := 0
	for _, set := range []bool{flags.Instruments, flags.Prices != 0,
		flags.Reports != 0, flags.KPI != 0, flags.Top != 0, flags.PE != 0,
		flags.Export != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.Reason("expected exactly one of -instruments, " +
			"-prices, -reports, -kpi, -top, -pe or -export")
	}
	if (flags.KPI != 0 || flags.Top != 0) && (flags.Market == "" || flags.Country == "") {
		return nil, errors.Reason("-kpi and -top require -market and -country")
	}
	if flags.Top != 0 && flags.Days < 1 {
		return nil, errors.Reason("-days must be positive")
	}
	if flags.Year != "" && flags.Year != LatestYear {
		if _, err := strconv.Atoi(flags.Year); err != nil {
			return nil, errors.Annotate(err, "invalid -year")
		}
	}
	if flags.Date != "" {
		if _, err := borsdata.ParseDate(flags.Date); err != nil {
			return nil, errors.Annotate(err, "invalid -date")
		}
	}
	return &flags, nil
}

type Config struct {
	Key            string `toml:"key"` // user key for the Borsdata API
	URL            string `toml:"url"` // default: borsdata.URL
	MaxYearCount   int    `toml:"max_year_count"`
	MaxR12QCount   int    `toml:"max_r12q_count"`
	MaxCount       int    `toml:"max_count"`
	CallsPerSecond int    `toml:"calls_per_second"`
}

// parseConfig reads the optional config file of the cache directory and fills
// in the API key from the environment or from the .env file of the cache
// directory when the config has none.
func parseConfig(dir string) (*Config, error) {
	var c Config
	filePath := filepath.Join(dir, "config.toml")
	f, err := os.Open(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// The key may still come from the environment.
	case err != nil:
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	default:
		defer f.Close()
		d := toml.NewDecoder(f)
		if err := d.Decode(&c); err != nil {
			return nil, errors.Annotate(err, "failed to read config file %s", filePath)
		}
	}
	if c.Key == "" {
		c.Key = os.Getenv(KeyEnv)
	}
	if c.Key == "" {
		envPath := filepath.Join(dir, ".env")
		env, err := godotenv.Read(envPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Annotate(err, "failed to read %s", envPath)
		}
		c.Key = env[KeyEnv]
	}
	if c.Key == "" {
		sample := `key = "YourSecretBorsdataKey"
`
		return nil, errors.Reason(
			"no API key: set %s or create config file '%s' containing:\n%s",
			KeyEnv, filePath, sample)
	}
	return &c, nil
}

// Client creates an API client configured by c.
func (c *Config) Client() *borsdata.Client {
	client := borsdata.NewClient(c.Key)
	if c.URL != "" {
		client.WithBaseURL(c.URL)
	}
	p := borsdata.DefaultParams()
	if c.MaxYearCount > 0 {
		p.MaxYearCount = c.MaxYearCount
	}
	if c.MaxR12QCount > 0 {
		p.MaxR12QCount = c.MaxR12QCount
	}
	if c.MaxCount > 0 {
		p.MaxCount = c.MaxCount
	}
	client.WithParams(p)
	if c.CallsPerSecond > 0 {
		client.WithLimiter(ratelimit.New(c.CallsPerSecond))
	}
	return client
}

func instrumentsTable(ctx context.Context, client *borsdata.Client) (*table.Table, error) {
	records, err := enrich.Fetch(ctx, client)
	if err != nil {
		return nil, err
	}
	return export.RecordsTable(export.InstrumentsSheet, records), nil
}

func pricesTable(ctx context.Context, client *borsdata.Client, id, sma int) (*table.Table, error) {
	prices, err := client.InstrumentStockPrices(ctx, id)
	if err != nil {
		return nil, err
	}
	if sma == 0 {
		tbl := table.NewNamedTable(export.PricesSheet, borsdata.StockPriceHeader()...)
		for _, p := range prices {
			tbl.AddRow(p)
		}
		return tbl, nil
	}
	rows, err := analysis.WithMovingAverage(prices, sma)
	if err != nil {
		return nil, err
	}
	tbl := table.NewNamedTable(export.PricesSheet, analysis.AveragedPriceHeader(sma)...)
	for _, r := range rows {
		tbl.AddRow(r)
	}
	return tbl, nil
}

func reportsTable(ctx context.Context, client *borsdata.Client, id int, reportType string) (*table.Table, error) {
	reports, err := client.InstrumentReportsByType(ctx, id, reportType)
	if err != nil {
		return nil, err
	}
	tbl := table.NewNamedTable("reports_"+reportType, reports.Header()...)
	for _, r := range reports.Rows() {
		tbl.AddRow(r)
	}
	return tbl, nil
}

func filteredRecords(ctx context.Context, client *borsdata.Client, market, country string) ([]enrich.Record, error) {
	records, err := enrich.Fetch(ctx, client)
	if err != nil {
		return nil, err
	}
	filtered := enrich.Filter(records, market, country)
	logging.Infof(ctx, "%d of %d instruments are in %s, %s",
		len(filtered), len(records), market, country)
	return filtered, nil
}

func kpiTable(ctx context.Context, client *borsdata.Client, flags *Flags) (*table.Table, error) {
	records, err := filteredRecords(ctx, client, flags.Market, flags.Country)
	if err != nil {
		return nil, err
	}
	rows, err := analysis.KPIHistory(ctx, client, records, flags.KPI,
		flags.ReportType, flags.PriceType)
	if err != nil {
		return nil, err
	}
	switch flags.Year {
	case "":
	case LatestYear:
		rows = analysis.TopKPI(rows, analysis.LastYear(rows), flags.Rank)
	default:
		year, err := strconv.Atoi(flags.Year)
		if err != nil {
			return nil, errors.Annotate(err, "invalid -year")
		}
		rows = analysis.TopKPI(rows, year, flags.Rank)
	}
	tbl := table.NewNamedTable("kpi_history", analysis.KPIRowHeader()...)
	for _, r := range rows {
		tbl.AddRow(r)
	}
	return tbl, nil
}

func topTable(ctx context.Context, client *borsdata.Client, flags *Flags) (*table.Table, error) {
	records, err := filteredRecords(ctx, client, flags.Market, flags.Country)
	if err != nil {
		return nil, err
	}
	rows, err := analysis.TopPerformers(ctx, client, records, flags.Top, flags.Days)
	if err != nil {
		return nil, err
	}
	tbl := table.NewNamedTable("top_performers", analysis.PerformerHeader()...)
	for _, r := range rows {
		tbl.AddRow(r)
	}
	return tbl, nil
}

func exportData(ctx context.Context, client *borsdata.Client, flags *Flags, w io.Writer) error {
	records, err := enrich.Fetch(ctx, client)
	if err != nil {
		return err
	}
	csvPath, xlsxPath, err := export.InstrumentsWithMetadata(ctx, flags.Export, records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, csvPath)
	fmt.Fprintln(w, xlsxPath)
	if !flags.Workbooks {
		return nil
	}
	if flags.Market != "" || flags.Country != "" {
		records = enrich.Filter(records, flags.Market, flags.Country)
	}
	day := borsdata.NewDateFromTime(time.Now())
	if flags.Date != "" {
		if day, err = borsdata.ParseDate(flags.Date); err != nil {
			return err
		}
	}
	paths, err := export.Workbooks(ctx, client, flags.Export, day, records)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	return nil
}

func printData(ctx context.Context, flags *Flags, client *borsdata.Client, w io.Writer) error {
	var tbl *table.Table
	var err error
	switch {
	case flags.Instruments:
		if tbl, err = instrumentsTable(ctx, client); err != nil {
			return errors.Annotate(err, "failed to fetch instruments")
		}
	case flags.Prices != 0:
		if tbl, err = pricesTable(ctx, client, flags.Prices, flags.SMA); err != nil {
			return errors.Annotate(err, "failed to fetch prices for %d", flags.Prices)
		}
	case flags.Reports != 0:
		if tbl, err = reportsTable(ctx, client, flags.Reports, flags.ReportType); err != nil {
			return errors.Annotate(err, "failed to fetch reports for %d", flags.Reports)
		}
	case flags.KPI != 0:
		if tbl, err = kpiTable(ctx, client, flags); err != nil {
			return errors.Annotate(err, "failed to fetch KPI %d history", flags.KPI)
		}
	case flags.Top != 0:
		if tbl, err = topTable(ctx, client, flags); err != nil {
			return errors.Annotate(err, "failed to rank top performers")
		}
	case flags.PE != 0:
		pe, err := analysis.LatestPE(ctx, client, flags.PE)
		if err != nil {
			return errors.Annotate(err, "failed to compute P/E for %d", flags.PE)
		}
		_, err = fmt.Fprintln(w, pe.String())
		return err
	case flags.Export != "":
		if err := exportData(ctx, client, flags, w); err != nil {
			return errors.Annotate(err, "failed to export to %s", flags.Export)
		}
		return nil
	}
	if tbl == nil {
		return errors.Reason("no data")
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	config, err := parseConfig(flags.Cache)
	if err != nil {
		logging.Errorf(ctx, "failed to parse config: %s", err.Error())
		os.Exit(1)
	}
	if err := printData(ctx, flags, config.Client(), os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
