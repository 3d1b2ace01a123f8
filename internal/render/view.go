package render

import (
	"time"

	"cryptoStats/internal/coins"
	"cryptoStats/internal/dashboard"
	"cryptoStats/internal/model"
)

const (
	refreshLabel    = "Refresh Data"
	refreshingLabel = "Refreshing..."
)

// CoinOption is one entry of the coin select.
type CoinOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Cards holds the formatted stats values.
type Cards struct {
	Price          string `json:"price"`
	MarketCap      string `json:"marketCap"`
	Change         string `json:"change"`
	ChangePositive bool   `json:"changePositive"`
}

// View is everything the presentation layer shows for a dashboard state.
type View struct {
	Coin         model.Coin   `json:"coin"`
	Coins        []CoinOption `json:"coins"`
	Cards        *Cards       `json:"cards,omitempty"`
	Deviation    string       `json:"deviation,omitempty"`
	HasDeviation bool         `json:"hasDeviation"`
	Loading      bool         `json:"loading"`
	Error        string       `json:"error,omitempty"`
	ErrorKind    string       `json:"errorKind,omitempty"`
	ButtonLabel  string       `json:"buttonLabel"`
	Generation   uint64       `json:"generation"`
	UpdatedAt    string       `json:"updatedAt,omitempty"`
}

// NewView formats state for display.
func NewView(state dashboard.State) View {
	view := View{
		Coin:         state.Coin,
		HasDeviation: state.Deviation.Valid,
		Deviation:    Deviation(state.Deviation),
		Loading:      state.Loading,
		Error:        state.Error,
		ErrorKind:    string(state.ErrorKind),
		ButtonLabel:  refreshLabel,
		Generation:   state.Generation,
	}
	if state.Loading {
		view.ButtonLabel = refreshingLabel
	}
	if !state.UpdatedAt.IsZero() {
		view.UpdatedAt = state.UpdatedAt.UTC().Format(time.RFC3339)
	}

	for _, coin := range coins.All() {
		view.Coins = append(view.Coins, CoinOption{
			ID:       coin.ID,
			Name:     coin.Name,
			Selected: coin.ID == state.Coin.ID,
		})
	}

	if state.Stats != nil {
		view.Cards = &Cards{
			Price:          Price(state.Stats.Price),
			MarketCap:      MarketCap(state.Stats.MarketCap),
			Change:         Change(state.Stats.Change24h),
			ChangePositive: ChangePositive(state.Stats.Change24h),
		}
	}

	return view
}
