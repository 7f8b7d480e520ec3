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

	"github.com/stockparfait/logging"
)

// UnknownInstrument is the name reported by InstrumentName when the id is not
// among the instruments.
const UnknownInstrument = "Failed to fetch instrument name"

// Instruments fetches all the instruments.
func (c *Client) Instruments(ctx context.Context) ([]Instrument, error) {
	var res struct {
		Instruments []Instrument `json:"instruments"`
	}
	if err := c.get(ctx, "instruments", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch instruments")
	}
	return res.Instruments, nil
}

// InstrumentsUpdated fetches the last update time of each instrument.
func (c *Client) InstrumentsUpdated(ctx context.Context) ([]InstrumentUpdate, error) {
	var res struct {
		Instruments []InstrumentUpdate `json:"instruments"`
	}
	if err := c.get(ctx, "instruments/updated", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch updated instruments")
	}
	return res.Instruments, nil
}

// Markets fetches the markets reference table.
func (c *Client) Markets(ctx context.Context) ([]Market, error) {
	var res struct {
		Markets []Market `json:"markets"`
	}
	if err := c.get(ctx, "markets", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch markets")
	}
	return res.Markets, nil
}

// Countries fetches the countries reference table.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var res struct {
		Countries []Country `json:"countries"`
	}
	if err := c.get(ctx, "countries", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch countries")
	}
	return res.Countries, nil
}

// Sectors fetches the sectors reference table.
func (c *Client) Sectors(ctx context.Context) ([]Sector, error) {
	var res struct {
		Sectors []Sector `json:"sectors"`
	}
	if err := c.get(ctx, "sectors", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch sectors")
	}
	return res.Sectors, nil
}

// Branches fetches the branches reference table.
func (c *Client) Branches(ctx context.Context) ([]Branch, error) {
	var res struct {
		Branches []Branch `json:"branches"`
	}
	if err := c.get(ctx, "branches", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch branches")
	}
	return res.Branches, nil
}

// TranslationMetadata fetches the Swedish / English names of the API's terms.
func (c *Client) TranslationMetadata(ctx context.Context) ([]Translation, error) {
	var res struct {
		Translations []Translation `json:"translationMetadatas"`
	}
	if err := c.get(ctx, "translationmetadata", nil, &res); err != nil {
		return nil, annotate(err, "failed to fetch translation metadata")
	}
	return res.Translations, nil
}

// NameLookup is the result of InstrumentName. When Found is false, Name is
// UnknownInstrument.
type NameLookup struct {
	ID    int
	Name  string
	Found bool
}

// InstrumentName looks up the instrument's name by its id. An unknown id is
// not an error: it is logged and reported as Found == false. Errors are
// returned only when the instruments cannot be fetched.
func (c *Client) InstrumentName(ctx context.Context, id int) (NameLookup, error) {
	instruments, err := c.Instruments(ctx)
	if err != nil {
		return NameLookup{ID: id, Name: UnknownInstrument},
			annotate(err, "failed to look up name of instrument %d", id)
	}
	for _, ins := range instruments {
		if ins.ID == id {
			return NameLookup{ID: id, Name: ins.Name, Found: true}, nil
		}
	}
	logging.Warningf(ctx, "instrument %d not found among %d instruments",
		id, len(instruments))
	return NameLookup{ID: id, Name: UnknownInstrument}, nil
}
