package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emove/connector"
	"github.com/emove/connector/log"
	"github.com/emove/connector/pkg/config"
	"github.com/emove/connector/transport"
	"github.com/emove/connector/transport/echo"
	"github.com/emove/connector/transport/tcp"
)

// app is the state shared by every command, set during PersistentPreRun.
type app struct {
	// global flags
	cfgFile   string
	address   string
	unitWidth int
	logLevel  string
	dryRun    bool

	cfg *config.Config
}

// NewRootCmd builds the connector command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "connector",
		Short: "Single-connection TCP client",
		Long: `connector opens one outbound TCP connection, sends text payloads
encoded as fixed-width code units and prints whatever the peer sends back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.connector/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.address, "address", "", "remote address as host:port")
	rootCmd.PersistentFlags().IntVar(&a.unitWidth, "unit-width", 0, "payload code unit width in bits, 8 or 16 (default 16)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default \"info\")")
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "use an in-memory transport that echoes every message")

	rootCmd.AddCommand(newSendCmd(a))
	rootCmd.AddCommand(newConsoleCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) load(cmd *cobra.Command) error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with flags
	if a.address != "" {
		cfg.Address = a.address
	}
	if a.unitWidth != 0 {
		cfg.Codec.UnitWidth = a.unitWidth
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := log.With(log.NewStdLogger(cmd.ErrOrStderr()), "ts", log.DefaultTimestamp)
	if err != nil {
		return err
	}
	log.SetLogger(logger)
	log.SetLevel(cfg.LogLevel())
	return nil
}

func (a *app) transport() transport.Transport {
	if a.dryRun {
		return echo.New()
	}
	return tcp.New(a.cfg.TCPOptions()...)
}

// newClient builds a client over the configured transport and codec.
func (a *app) newClient(op ...connector.Option) (*connector.Client, error) {
	c, err := a.cfg.PayloadCodec()
	if err != nil {
		return nil, err
	}
	op = append([]connector.Option{
		connector.WithPayloadCodec(c),
		connector.MaxGoPoolCapacity(a.cfg.Pool.Capacity),
	}, op...)
	return connector.NewClient(a.transport(), op...), nil
}
