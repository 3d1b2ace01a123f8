package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"text/tabwriter"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// HTML writes the dashboard page for view.
func HTML(w io.Writer, view View) error {
	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// Text writes the cards as aligned plain text.
func Text(w io.Writer, view View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Coin\t%s (%s)\n", view.Coin.Name, view.Coin.ID)
	if view.Cards != nil {
		direction := "down"
		if view.Cards.ChangePositive {
			direction = "up"
		}
		fmt.Fprintf(tw, "Price (USD)\t%s\n", view.Cards.Price)
		fmt.Fprintf(tw, "Market Cap (USD)\t%s\n", view.Cards.MarketCap)
		fmt.Fprintf(tw, "24h Change\t%s (%s)\n", view.Cards.Change, direction)
	}
	if view.HasDeviation {
		fmt.Fprintf(tw, "Standard Deviation (Last 100 records)\t%s\n", view.Deviation)
	}
	if view.Error != "" {
		fmt.Fprintf(tw, "Error\t%s\n", view.Error)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	return nil
}
