package main

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snehendu098/ghost/pkg/rpc"
	"github.com/snehendu098/ghost/pkg/tx"
)

// txFlags are shared by every command that builds a transaction.
type txFlags struct {
	mist     bool
	noSubmit bool
}

func (f *txFlags) register(cmd *cobra.Command, withAmounts bool) {
	if withAmounts {
		cmd.Flags().BoolVar(&f.mist, "mist", false, "Amounts are integer MIST instead of decimal SUI")
	}
	cmd.Flags().BoolVar(&f.noSubmit, "no-submit", false, "Print the signed transaction instead of submitting it")
}

func (f *txFlags) parseAmount(s string) (uint64, error) {
	if f.mist {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return n, nil
	}
	return rpc.ParseSui(s)
}

// finish submits stx, or prints it when --no-submit is set.
func (f *txFlags) finish(a *app, cmd *cobra.Command, stx *tx.SignedTransaction) error {
	out := cmd.OutOrStdout()
	if f.noSubmit {
		return printJSON(out, map[string]string{
			"sender":    stx.Sender(),
			"txBytes":   base64.StdEncoding.EncodeToString(stx.TxBytes),
			"scheme":    stx.Scheme.String(),
			"signature": stx.Signature.Base64(),
			"publicKey": base64.StdEncoding.EncodeToString(stx.PublicKey),
		})
	}

	resp, err := a.submitter().Submit(cmd.Context(), stx)
	if err != nil {
		return err
	}
	printExecution(out, resp)
	if !resp.Effects.Status.Success() {
		return fmt.Errorf("transaction %s failed: %s", resp.Digest, resp.Effects.Status.Error)
	}
	return nil
}

func newTransferCmd(a *app) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "transfer <recipient> <amount>",
		Short: "Transfer SUI to a recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := f.parseAmount(args[1])
			if err != nil {
				return err
			}
			b, err := a.builder(cmd.Context())
			if err != nil {
				return err
			}
			stx, err := b.TransferSui(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			return f.finish(a, cmd, stx)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newMergeCmd(a *app) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "merge <primary-coin> <coin-to-merge>",
		Short: "Merge one coin into another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.builder(cmd.Context())
			if err != nil {
				return err
			}
			stx, err := b.MergeCoins(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return f.finish(a, cmd, stx)
		},
	}
	f.register(cmd, false)
	return cmd
}

func newSplitCmd(a *app) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "split <coin> <amount>...",
		Short: "Split a coin into new coins of the given amounts",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amounts := make([]uint64, 0, len(args)-1)
			for _, s := range args[1:] {
				amount, err := f.parseAmount(s)
				if err != nil {
					return err
				}
				amounts = append(amounts, amount)
			}

			b, err := a.builder(cmd.Context())
			if err != nil {
				return err
			}
			stx, err := b.SplitCoin(cmd.Context(), args[0], amounts)
			if err != nil {
				return err
			}
			return f.finish(a, cmd, stx)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	var (
		f        txFlags
		typeArgs []string
	)

	cmd := &cobra.Command{
		Use:   "call <package> <module> <function> [arg]...",
		Short: "Call a Move function",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs := make([]any, 0, len(args)-3)
			for _, arg := range args[3:] {
				callArgs = append(callArgs, arg)
			}

			b, err := a.builder(cmd.Context())
			if err != nil {
				return err
			}
			stx, err := b.MoveCall(cmd.Context(), tx.MoveCallRequest{
				Package:       args[0],
				Module:        args[1],
				Function:      args[2],
				TypeArguments: typeArgs,
				Arguments:     callArgs,
			})
			if err != nil {
				return err
			}
			return f.finish(a, cmd, stx)
		},
	}
	f.register(cmd, false)
	cmd.Flags().StringSliceVar(&typeArgs, "type-arg", nil, "Type argument, may be repeated")
	return cmd
}
