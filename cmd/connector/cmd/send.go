package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/emove/connector"
)

const shutdownTimeout = 5 * time.Second

func newSendCmd(a *app) *cobra.Command {
	var wait time.Duration

	sendCmd := &cobra.Command{
		Use:   "send [host:port] <text>...",
		Short: "Connect, send every text in order and print what comes back",
		Long: `Connect to the remote address, send each text argument as one payload,
print every payload received during --wait, then disconnect.

The address is taken from --address or the config file; when neither is
set, the first argument is the address.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, texts := a.cfg.Address, args
			if addr == "" {
				if len(args) < 2 {
					return errors.New("send needs an address and at least one text")
				}
				addr, texts = args[0], args[1:]
			}
			return a.send(cmd.Context(), cmd.OutOrStdout(), addr, texts, wait)
		},
	}

	sendCmd.Flags().DurationVar(&wait, "wait", time.Second, "how long to print received payloads before disconnecting")
	return sendCmd
}

// printer serializes output written from the client hooks and the command.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (a *app) send(ctx context.Context, out io.Writer, addr string, texts []string, wait time.Duration) error {
	p := &printer{out: out}
	states := make(chan connector.State, 64)

	c, err := a.newClient(
		connector.WithOnStatusChanged(func(st connector.Status) {
			p.printf("* %s\n", st)
		}),
		connector.WithOnDataReceived(func(text string) {
			p.printf("< %s\n", text)
		}),
		connector.WithOnStateChanged(func(conn connector.Connection) {
			select {
			case states <- conn.State:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}

	c.Run()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = c.Shutdown(sctx)
	}()

	if err := c.Connect(addr); err != nil {
		return err
	}

	connectTimeout := a.cfg.TCP.DialTimeout + time.Second
	state, err := awaitState(ctx, states, connectTimeout, connector.Connected, connector.Idle)
	if err != nil {
		return err
	}
	if state != connector.Connected {
		return fmt.Errorf("unable to connect to %s", addr)
	}

	for _, text := range texts {
		if err := c.Send(text); err != nil {
			return fmt.Errorf("failed to send %q: %w", text, err)
		}
		p.printf("> %s\n", text)
	}

	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}

	if err := c.Disconnect(); err != nil {
		if errors.Is(err, connector.ErrNotConnected) {
			// the peer closed the connection while we waited
			return nil
		}
		return err
	}
	_, err = awaitState(ctx, states, shutdownTimeout, connector.Idle)
	return err
}

// awaitState blocks until one of want is reported on states.
func awaitState(ctx context.Context, states <-chan connector.State, timeout time.Duration, want ...connector.State) (connector.State, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case s := <-states:
			for _, w := range want {
				if s == w {
					return s, nil
				}
			}
		case <-timer.C:
			return 0, fmt.Errorf("timed out after %s waiting for %v", timeout, want)
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
