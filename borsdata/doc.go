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

// Package borsdata implements a client for the Borsdata REST API.
//
// Official documentation is at https://github.com/Borsdata-Sweden/API/wiki .
//
// Every request is an authenticated GET carrying the API key and the paging
// parameters (see Params) in its query. The API allows at most 10 requests
// per second per key; the client spaces its requests accordingly and
// serializes them, so a single Client can be shared but never issues requests
// concurrently. There are no retries: a non-2xx response is returned as
// *APIError with the raw response body.
//
// Each endpoint has its own normalization. Price endpoints use single-letter
// field names on the wire, which are mapped onto StockPrice with nulls set to
// 0, and per-instrument prices are sorted by date. Reports keep all of their
// fields with lowercased names in a ReportTable sorted by (year, period).
package borsdata
