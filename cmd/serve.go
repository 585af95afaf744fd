package main

import (
	"fmt"

	"github.com/meghashyamc/searchresource/api"
	"github.com/meghashyamc/searchresource/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return api.Run(cmd.Context(), cfg)
	},
}
