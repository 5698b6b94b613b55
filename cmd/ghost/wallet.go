package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/snehendu098/ghost/pkg/keystore"
	"github.com/snehendu098/ghost/pkg/wallet"
)

func newWalletCmd(a *app) *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage signing identities",
	}

	walletCmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Generate a new identity",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				w, err := wallet.Generate()
				if err != nil {
					return err
				}
				if err := keystore.PutWallet(cmd.Context(), a.store, w); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), w.Address())
				return nil
			},
		},
		&cobra.Command{
			Use:   "import",
			Short: "Import an identity from a base64 private key read from stdin",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				secret, err := readSecret(cmd, "Private key (base64): ")
				if err != nil {
					return err
				}
				w, err := wallet.FromBase64PrivateKey(secret)
				if err != nil {
					return err
				}
				if err := keystore.PutWallet(cmd.Context(), a.store, w); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), w.Address())
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored identities",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				addrs, err := a.store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(addrs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No wallets.")
					return nil
				}

				t := newTable(cmd.OutOrStdout(), "#", "Address", "Fingerprint")
				for i, addr := range addrs {
					w, err := keystore.LoadWallet(cmd.Context(), a.store, addr)
					if err != nil {
						return err
					}
					t.AppendRow(table.Row{i + 1, addr, w.Fingerprint()})
				}
				t.Render()
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <address>",
			Short: "Delete a stored identity",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "export <address>",
			Short: "Print the base64 private key of a stored identity",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := keystore.LoadWallet(cmd.Context(), a.store, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Keep this key secret. Anyone holding it controls the address.")
				fmt.Fprintln(cmd.OutOrStdout(), w.ExportBase64PrivateKey())
				return nil
			},
		},
	)
	return walletCmd
}

// readSecret reads one line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimSpace(line)
	if secret == "" {
		return "", fmt.Errorf("empty secret")
	}
	return secret, nil
}
