package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cryptoStats/internal/coins"
	"cryptoStats/internal/dashboard"
	"cryptoStats/internal/model"
)

func bitcoinState() dashboard.State {
	coin, _ := coins.Lookup("bitcoin")
	return dashboard.State{
		Coin: coin,
		Stats: &model.Stats{
			Price:     decimal.RequireFromString("65000.1234"),
			MarketCap: decimal.RequireFromString("1280000000000"),
			Change24h: decimal.RequireFromString("2.5"),
		},
		Deviation:  decimal.NewNullDecimal(decimal.RequireFromString("134.56")),
		Generation: 3,
		UpdatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewViewSuccessScenario(t *testing.T) {
	view := NewView(bitcoinState())

	if view.Cards == nil {
		t.Fatalf("cards should be present")
	}
	if view.Cards.Price != "$65000.12" {
		t.Fatalf("unexpected price: %s", view.Cards.Price)
	}
	if view.Cards.MarketCap != "$1,280,000,000,000" {
		t.Fatalf("unexpected market cap: %s", view.Cards.MarketCap)
	}
	if view.Cards.Change != "2.50%" || !view.Cards.ChangePositive {
		t.Fatalf("unexpected change: %s positive=%v", view.Cards.Change, view.Cards.ChangePositive)
	}
	if !view.HasDeviation || view.Deviation != "134.56" {
		t.Fatalf("unexpected deviation: %q", view.Deviation)
	}
	if view.ButtonLabel != "Refresh Data" {
		t.Fatalf("unexpected button label: %s", view.ButtonLabel)
	}
	if view.UpdatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected updated at: %s", view.UpdatedAt)
	}

	var selected []string
	for _, opt := range view.Coins {
		if opt.Selected {
			selected = append(selected, opt.ID)
		}
	}
	if len(view.Coins) != 3 || len(selected) != 1 || selected[0] != "bitcoin" {
		t.Fatalf("unexpected coin options: %+v", view.Coins)
	}
}

func TestNewViewNegativeChange(t *testing.T) {
	state := bitcoinState()
	state.Stats.Change24h = decimal.RequireFromString("-3.1")

	view := NewView(state)
	if view.Cards.Change != "-3.10%" || view.Cards.ChangePositive {
		t.Fatalf("unexpected change: %s positive=%v", view.Cards.Change, view.Cards.ChangePositive)
	}
}

func TestNewViewEmptyAndLoading(t *testing.T) {
	view := NewView(dashboard.State{Coin: coins.Default(), Loading: true})
	if view.Cards != nil || view.HasDeviation {
		t.Fatalf("no cards expected before first success")
	}
	if view.ButtonLabel != "Refreshing..." {
		t.Fatalf("unexpected button label: %s", view.ButtonLabel)
	}
}

func TestHTML(t *testing.T) {
	state := bitcoinState()
	state.Error = "Failed to fetch deviation"

	var buf bytes.Buffer
	if err := HTML(&buf, NewView(state)); err != nil {
		t.Fatalf("render: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		"$65000.12",
		"$1,280,000,000,000",
		`text-success">2.50%`,
		"134.56",
		"Failed to fetch deviation",
		`<option value="bitcoin" selected>Bitcoin</option>`,
		`<option value="matic-network">Matic</option>`,
		"Refresh Data",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(page, "Loading...") {
		t.Fatalf("page should not show loading")
	}
}

func TestHTMLDisablesRefreshWhileLoading(t *testing.T) {
	state := bitcoinState()
	state.Loading = true

	var buf bytes.Buffer
	if err := HTML(&buf, NewView(state)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `<button type="submit" disabled>Refreshing...</button>`) {
		t.Fatalf("refresh button should be disabled")
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, NewView(bitcoinState())); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Bitcoin (bitcoin)", "$65000.12", "2.50% (up)", "134.56"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
