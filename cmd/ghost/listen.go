package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newListenCmd(a *app) *cobra.Command {
	var limit int

	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Stream notifications until interrupted",
	}
	listenCmd.PersistentFlags().IntVar(&limit, "limit", 0, "Stop after this many notifications, 0 streams forever")

	// stream runs listen and stops it after limit notifications.
	stream := func(cmd *cobra.Command, listen func(ctx context.Context, emit func()) error) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		seen := 0
		err := listen(ctx, func() {
			seen++
			if limit > 0 && seen >= limit {
				cancel()
			}
		})
		if errors.Is(err, context.Canceled) && cmd.Context().Err() == nil {
			return nil
		}
		return err
	}

	printDigest := func(out io.Writer, emit func()) func(string) {
		return func(digest string) {
			fmt.Fprintln(out, digest)
			emit()
		}
	}

	listenCmd.AddCommand(
		&cobra.Command{
			Use:   "tx",
			Short: "Stream every transaction digest",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return stream(cmd, func(ctx context.Context, emit func()) error {
					return a.listener().ListenTransactions(ctx, printDigest(cmd.OutOrStdout(), emit))
				})
			},
		},
		&cobra.Command{
			Use:   "events",
			Short: "Stream every event frame as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return stream(cmd, func(ctx context.Context, emit func()) error {
					return a.listener().ListenEvents(ctx, func(frame json.RawMessage) {
						fmt.Fprintln(cmd.OutOrStdout(), string(frame))
						emit()
					})
				})
			},
		},
		&cobra.Command{
			Use:   "address <address>",
			Short: "Stream digests of transactions sent from or to an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return stream(cmd, func(ctx context.Context, emit func()) error {
					return a.listener().ListenAddressTransactions(ctx, args[0], printDigest(cmd.OutOrStdout(), emit))
				})
			},
		},
	)
	return listenCmd
}
