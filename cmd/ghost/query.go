package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/snehendu098/ghost/pkg/rpc"
)

func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List known networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTable(cmd.OutOrStdout(), "", "Name", "RPC", "WebSocket", "Faucet")
			for _, name := range a.networks.Names() {
				nw := a.networks[name]
				active := ""
				if name == a.network.Name {
					active = "*"
				}
				t.AppendRow(table.Row{active, name, nw.RPCURL, nw.WSURL, nw.FaucetURL})
			}
			t.Render()
			return nil
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	var coinType string

	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the balance of an address, default is the signing wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.address(cmd.Context(), args)
			if err != nil {
				return err
			}

			var balance uint64
			err = a.query(cmd.Context(), func(ctx context.Context) (err error) {
				balance, err = a.client.GetBalance(ctx, addr, coinType)
				return err
			})
			if err != nil {
				return err
			}

			if coinType == rpc.SuiCoinType {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d MIST)\n", addr, fmtSui(balance), balance)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s\n", addr, balance, coinType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&coinType, "coin-type", rpc.SuiCoinType, "Coin type")
	return cmd
}

func newCoinsCmd(a *app) *cobra.Command {
	var coinType string

	cmd := &cobra.Command{
		Use:   "coins [address]",
		Short: "List the coins owned by an address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.address(cmd.Context(), args)
			if err != nil {
				return err
			}

			var coins []rpc.Coin
			err = a.query(cmd.Context(), func(ctx context.Context) (err error) {
				coins, err = a.client.GetCoins(ctx, addr, coinType)
				return err
			})
			if err != nil {
				return err
			}
			if len(coins) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No coins of type %s.\n", coinType)
				return nil
			}

			var total uint64
			t := newTable(cmd.OutOrStdout(), "Coin", "Version", "Balance")
			for _, c := range coins {
				total += uint64(c.Balance)
				t.AppendRow(table.Row{c.CoinObjectID, uint64(c.Version), fmtSui(uint64(c.Balance))})
			}
			t.AppendFooter(table.Row{"Total", "", fmtSui(total)})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&coinType, "coin-type", rpc.SuiCoinType, "Coin type")
	return cmd
}

func newObjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "objects [address]",
		Short: "List the objects owned by an address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.address(cmd.Context(), args)
			if err != nil {
				return err
			}

			var objects []rpc.Object
			err = a.query(cmd.Context(), func(ctx context.Context) (err error) {
				objects, err = a.client.GetObjectsOwnedByAddress(ctx, addr)
				return err
			})
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Object", "Version", "Type")
			for _, o := range objects {
				t.AppendRow(table.Row{o.ObjectID, uint64(o.Version), o.Type})
			}
			t.Render()
			return nil
		},
	}
}

func newObjectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "object <id>",
		Short: "Show an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var obj *rpc.Object
			err := a.query(cmd.Context(), func(ctx context.Context) (err error) {
				obj, err = a.client.GetObject(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), obj)
			}

			t := newTable(cmd.OutOrStdout(), "Field", "Value")
			t.AppendRow(table.Row{"ID", obj.ObjectID})
			t.AppendRow(table.Row{"Version", uint64(obj.Version)})
			t.AppendRow(table.Row{"Digest", obj.Digest})
			t.AppendRow(table.Row{"Type", obj.Type})
			t.AppendRow(table.Row{"Owner", obj.Owner.String()})
			t.AppendRow(table.Row{"Previous tx", obj.PreviousTransaction})
			t.AppendRow(table.Row{"Public transfer", obj.Data.HasPublicTransfer})
			t.Render()
			if len(obj.Data.Fields) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), string(obj.Data.Fields))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw object")
	return cmd
}

func newTxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <digest>",
		Short: "Show an executed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := rpc.ParseDigest(args[0])
			if err != nil {
				return err
			}

			var resp *rpc.TransactionResponse
			err = a.query(cmd.Context(), func(ctx context.Context) (err error) {
				resp, err = a.client.GetTransaction(ctx, digest.String())
				return err
			})
			if err != nil {
				return err
			}
			printExecution(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}
