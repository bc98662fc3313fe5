// Package cli provides the keyturn operations CLI: running the API
// server and acting on offers from a terminal.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/keyturn/keyturn/internal/app"
)

// NewRootCmd builds the root command wired to the container.
func NewRootCmd(c *app.Container) *cobra.Command {
	root := &cobra.Command{
		Use:           "keyturn",
		Short:         "Keyturn rental marketplace back end",
		Long:          "Keyturn runs the rental marketplace API and gives operators direct access to the move-in verification flow.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(c))
	root.AddCommand(newOfferCmd(c))

	return root
}
