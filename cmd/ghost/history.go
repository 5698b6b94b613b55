package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/snehendu098/ghost/pkg/journal"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		opts      journal.ListOptions
		ascending bool
	)

	cmd := &cobra.Command{
		Use:   "history [digest]",
		Short: "Show submitted transactions, or one of them in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.journal == nil {
				return errJournalDisabled
			}

			if len(args) == 1 {
				rec, err := a.journal.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				resp, err := rec.Response()
				if err != nil {
					return err
				}
				printExecution(cmd.OutOrStdout(), resp)
				return nil
			}

			if ascending {
				opts.Sort = journal.SortTypeAscending
			}
			recs, err := a.journal.List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Time", "Digest", "Sender", "Status", "Gas")
			for _, rec := range recs {
				t.AppendRow(table.Row{
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Digest,
					rec.Sender,
					rec.Status,
					fmtSui(rec.GasTotal()),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Sender, "sender", "", "Only show transactions sent by this address")
	cmd.Flags().Uint32Var(&opts.Offset, "offset", 0, "Number of records to skip")
	cmd.Flags().Uint32Var(&opts.Limit, "limit", journal.DefaultLimit, "Number of records to show")
	cmd.Flags().BoolVar(&ascending, "asc", false, "Oldest first")
	return cmd
}
