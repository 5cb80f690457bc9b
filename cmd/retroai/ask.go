package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/retroengine/retroai/pkg/core"
)

var autoConfirm bool

func init() {
	askCmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "apply changes that need confirmation without asking")
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		logger, err := stderrLogger()
		if err != nil {
			return err
		}
		w, err := openWorkspace(s, logger)
		if err != nil {
			return err
		}
		if _, err := w.connect(); err != nil {
			return errors.Join(err, w.close())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return askAndClose(ctx, w, strings.Join(args, " "), autoConfirm, newPrinter())
	},
}

// askAndClose runs one turn against the workspace and closes it. A failed
// save is returned unless the turn already failed.
func askAndClose(ctx context.Context, w *workspace, message string, confirm bool, out core.Callback) (err error) {
	defer func() {
		if cerr := w.close(); err == nil {
			err = cerr
		}
	}()
	w.agent.UpdateContext(w.project.EditorContext())
	return ask(ctx, w.agent, message, confirm, out)
}

// ask runs one turn to completion. A batch waiting for confirmation is run
// when confirm is set and cancelled otherwise.
func ask(ctx context.Context, agent *core.Agent, message string, confirm bool, out core.Callback) error {
	agent.SetCallback(out)
	if !agent.ProcessUserMessage(message) {
		return errors.New("message was not accepted")
	}
	if err := agent.Wait(ctx); err != nil {
		return err
	}

	switch agent.State() {
	case core.StateWaitingForConfirmation:
		if confirm {
			agent.ConfirmAction()
		} else {
			agent.CancelAction()
			out("Re-run with --yes to apply these changes.", false)
		}
	case core.StateError:
		return fmt.Errorf("request failed: %s", agent.LastError())
	}
	return nil
}

// newPrinter renders replies as markdown and tool lines verbatim.
func newPrinter() core.Callback {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	return func(message string, isError bool) {
		if isError {
			fmt.Fprintln(os.Stderr, message)
			return
		}
		if renderer != nil && !strings.HasPrefix(message, "✓") {
			if out, err := renderer.Render(message); err == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Println(message)
	}
}
