package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/snehendu098/ghost/pkg/rpc"
)

func newTable(out io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row(header))
	t.AppendSeparator()
	return t
}

func fmtSui(mist uint64) string {
	return rpc.FormatSui(mist) + " SUI"
}

func printJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func printExecution(out io.Writer, resp *rpc.TransactionResponse) {
	effects := resp.Effects
	status := effects.Status.Status
	if effects.Status.Error != "" {
		status += ": " + effects.Status.Error
	}

	t := newTable(out, "Field", "Value")
	t.AppendRow(table.Row{"Digest", resp.Digest})
	t.AppendRow(table.Row{"Status", status})
	t.AppendRow(table.Row{"Gas", fmtSui(effects.GasUsed.Total())})
	t.AppendRow(table.Row{"Created", len(effects.Created)})
	t.AppendRow(table.Row{"Mutated", len(effects.Mutated)})
	t.AppendRow(table.Row{"Deleted", len(effects.Deleted)})
	t.Render()

	if len(resp.Events) == 0 {
		return
	}
	et := newTable(out, "Seq", "Type", "Sender")
	for _, ev := range resp.Events {
		et.AppendRow(table.Row{uint64(ev.ID.EventSeq), ev.Type, ev.Sender})
	}
	et.Render()
}
