package coins

import (
	"cryptoStats/internal/model"
)

var all = []model.Coin{
	{ID: "bitcoin", Name: "Bitcoin"},
	{ID: "matic-network", Name: "Matic"},
	{ID: "ethereum", Name: "Ethereum"},
}

// All returns the selectable coins in display order.
func All() []model.Coin {
	out := make([]model.Coin, len(all))
	copy(out, all)
	return out
}

// Default returns the coin selected at startup.
func Default() model.Coin {
	return all[0]
}

// Lookup returns the coin with the given id.
func Lookup(id string) (model.Coin, bool) {
	for _, coin := range all {
		if coin.ID == id {
			return coin, true
		}
	}
	return model.Coin{}, false
}
