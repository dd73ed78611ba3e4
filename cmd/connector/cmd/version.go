package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emove/connector/codec/payload"
)

const connectorVersion = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show connector version",
		// the version does not need a config file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "connector version %s\n", connectorVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "payload codec: %s\n", payload.NewUnit16Codec().Name())
			return nil
		},
	}
}
