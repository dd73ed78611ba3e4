package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emove/connector"
	"github.com/emove/connector/log"
	"github.com/emove/connector/pkg/tui"
)

func newConsoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "console [host:port]",
		Short: "Launch the interactive console",
		Long: `Launch an interactive terminal console holding one connection.

Key bindings:
  Tab         Switch between the address and message fields
  Enter       Connect/disconnect on the address field, send on the message field
  Ctrl+D      Connect or disconnect
  Esc/Ctrl+C  Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Address
			if len(args) == 1 {
				addr = args[0]
			}

			// Log lines would tear the alt screen apart.
			log.SetLevel(log.LevelFatal)

			var p *tea.Program
			c, err := a.newClient(
				connector.WithOnStatusChanged(func(st connector.Status) {
					p.Send(tui.StatusMsg(st))
				}),
				connector.WithOnDataReceived(func(text string) {
					p.Send(tui.DataMsg(text))
				}),
				connector.WithOnStateChanged(func(conn connector.Connection) {
					p.Send(tui.StateMsg(conn))
				}),
			)
			if err != nil {
				return err
			}

			p = tea.NewProgram(tui.New(c, addr), tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			c.Run()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = c.Shutdown(ctx)
			}()

			_, err = p.Run()
			return err
		},
	}
}
