package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cryptoStats/internal/coins"
)

func runCoins(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if asJSON {
		return json.NewEncoder(out).Encode(coins.All())
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, coin := range coins.All() {
		fmt.Fprintf(tw, "%s\t%s\n", coin.ID, coin.Name)
	}
	return tw.Flush()
}
