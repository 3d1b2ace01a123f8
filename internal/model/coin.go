package model

// Coin is a selectable cryptocurrency. ID is the stats API query key.
type Coin struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
