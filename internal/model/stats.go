package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Stats is the body returned by the stats endpoint for one coin.
type Stats struct {
	Price     decimal.Decimal `json:"price"`
	MarketCap decimal.Decimal `json:"marketCap"`
	Change24h decimal.Decimal `json:"24hChange"`
}

// MarshalJSON encodes the values as JSON numbers so the output decodes back
// through UnmarshalJSON.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Price     json.Number `json:"price"`
		MarketCap json.Number `json:"marketCap"`
		Change24h json.Number `json:"24hChange"`
	}{
		Price:     json.Number(s.Price.String()),
		MarketCap: json.Number(s.MarketCap.String()),
		Change24h: json.Number(s.Change24h.String()),
	})
}

// UnmarshalJSON decodes Stats. Every field must be present and a JSON number;
// quoted numbers are rejected.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Price     json.RawMessage `json:"price"`
		MarketCap json.RawMessage `json:"marketCap"`
		Change24h json.RawMessage `json:"24hChange"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	price, err := numberField("price", raw.Price)
	if err != nil {
		return err
	}
	marketCap, err := numberField("marketCap", raw.MarketCap)
	if err != nil {
		return err
	}
	change, err := numberField("24hChange", raw.Change24h)
	if err != nil {
		return err
	}

	*s = Stats{Price: price, MarketCap: marketCap, Change24h: change}
	return nil
}

// Equal reports whether two Stats hold the same values.
func (s Stats) Equal(other Stats) bool {
	return s.Price.Equal(other.Price) &&
		s.MarketCap.Equal(other.MarketCap) &&
		s.Change24h.Equal(other.Change24h)
}

// DeviationResponse is the body returned by the deviation endpoint.
// Deviation is the standard deviation of the last 100 recorded prices.
type DeviationResponse struct {
	Deviation decimal.NullDecimal `json:"deviation"`
}

// UnmarshalJSON accepts a JSON number or null for deviation.
func (d *DeviationResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Deviation json.RawMessage `json:"deviation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw.Deviation) == 0 || bytes.Equal(raw.Deviation, []byte("null")) {
		*d = DeviationResponse{}
		return nil
	}
	value, err := numberField("deviation", raw.Deviation)
	if err != nil {
		return err
	}
	*d = DeviationResponse{Deviation: decimal.NewNullDecimal(value)}
	return nil
}

func numberField(name string, raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, fmt.Errorf("missing field %s", name)
	}
	if raw[0] == '"' {
		return decimal.Decimal{}, fmt.Errorf("field %s is not a number: %s", name, raw)
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return decimal.Decimal{}, fmt.Errorf("field %s is not a number: %w", name, err)
	}
	value, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("field %s: %w", name, err)
	}
	return value, nil
}
