package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ghost",
		Short: "Ledger wallet and transaction CLI",
		Long: "Command line interface for managing keys, querying a ledger node over JSON-RPC, " +
			"building and submitting transactions and streaming notifications.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	a.registerFlags(rootCmd)

	rootCmd.AddCommand(commands(a)...)
	rootCmd.AddCommand(newShellCmd(a))
	return rootCmd
}

// commands builds the command set shared by the root command and the interactive shell.
func commands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newWalletCmd(a),
		newNetworksCmd(a),
		newBalanceCmd(a),
		newCoinsCmd(a),
		newObjectsCmd(a),
		newObjectCmd(a),
		newTxCmd(a),
		newTransferCmd(a),
		newMergeCmd(a),
		newSplitCmd(a),
		newCallCmd(a),
		newFaucetCmd(a),
		newListenCmd(a),
		newHistoryCmd(a),
	}
}
