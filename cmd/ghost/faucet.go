package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newFaucetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "faucet [address]",
		Short: "Request test coins from the network faucet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.network.FaucetURL == "" {
				return fmt.Errorf("network %s has no faucet", a.network.Name)
			}
			addr, err := a.address(cmd.Context(), args)
			if err != nil {
				return err
			}

			// Not retried: a repeated request could be funded twice.
			resp, err := a.client.RequestFaucet(cmd.Context(), a.network.FaucetURL, addr)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Coin", "Amount", "Transfer tx")
			var total uint64
			for _, c := range resp.TransferredGasObjects {
				total += uint64(c.Amount)
				t.AppendRow(table.Row{c.ID, fmtSui(uint64(c.Amount)), c.TransferTxDigest})
			}
			t.AppendFooter(table.Row{"Total", fmtSui(total), ""})
			t.Render()
			return nil
		},
	}
}
