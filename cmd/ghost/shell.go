package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh := &shell{
				a:      a,
				ctx:    context.WithoutCancel(cmd.Context()),
				from:   a.flags.from,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
			}
			sh.run()
			return nil
		},
	}
}

type shell struct {
	a      *app
	ctx    context.Context
	from   string
	out    io.Writer
	errOut io.Writer
}

func (s *shell) run() {
	fd := int(os.Stdin.Fd())
	initialState, _ := term.GetState(fd)
	restore := func() {
		if initialState != nil {
			_ = term.Restore(fd, initialState)
		}
		_ = exec.Command("stty", "sane").Run()
	}

	options := append(styleOptions(),
		prompt.OptionPrefix(fmt.Sprintf("ghost(%s)> ", s.a.network.Name)),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			in = strings.TrimSpace(in)
			return breakline && (in == "exit" || in == "quit")
		}),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(*prompt.Buffer) {
				restore()
				_ = s.a.close()
				os.Exit(0)
			},
		}),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn:  func(*prompt.Buffer) {},
		}),
	)

	prompt.New(s.Execute, s.Complete, options...).Run()
	restore()
}

// Execute runs one input line as a command. Interrupting a command returns to the prompt.
func (s *shell) Execute(line string) {
	args := strings.Fields(line)
	if len(args) == 0 || args[0] == "exit" || args[0] == "quit" {
		return
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	root := s.newRoot()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(s.errOut, "Error: %s\n", err)
	}
}

func (s *shell) newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "ghost",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(s.out)
	root.SetErr(s.errOut)
	root.PersistentFlags().StringVarP(&s.a.flags.from, "from", "f", s.from, "Address of the signing wallet")
	root.AddCommand(commands(s.a)...)
	return root
}

func (s *shell) Complete(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(s.complete(d), d.GetWordBeforeCursor(), true)
}

func (s *shell) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	args := strings.Fields(text)
	if len(args) == 0 || strings.HasSuffix(text, " ") {
		args = append(args, "")
	}

	cmds := s.newRoot().Commands()
	for _, arg := range args[:len(args)-1] {
		next := findCommand(cmds, arg)
		if next == nil {
			return nil
		}
		cmds = next.Commands()
	}

	suggestions := make([]prompt.Suggest, 0, len(cmds)+1)
	for _, c := range cmds {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		suggestions = append(suggestions, prompt.Suggest{Text: c.Name(), Description: c.Short})
	}
	if len(args) == 1 {
		suggestions = append(suggestions, prompt.Suggest{Text: "exit", Description: "Exit the shell"})
	}
	return suggestions
}

func findCommand(cmds []*cobra.Command, name string) *cobra.Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func styleOptions() []prompt.Option {
	return []prompt.Option{
		prompt.OptionTitle("ghost"),
		prompt.OptionPrefixTextColor(prompt.Yellow),
		prompt.OptionPreviewSuggestionTextColor(prompt.Cyan),

		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSuggestionBGColor(prompt.DarkBlue),

		prompt.OptionDescriptionTextColor(prompt.Black),
		prompt.OptionDescriptionBGColor(prompt.Yellow),

		prompt.OptionSelectedSuggestionTextColor(prompt.Black),
		prompt.OptionSelectedSuggestionBGColor(prompt.Yellow),

		prompt.OptionSelectedDescriptionTextColor(prompt.White),
		prompt.OptionSelectedDescriptionBGColor(prompt.DarkBlue),
	}
}
