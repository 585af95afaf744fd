package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "searchresource",
	Short: "Paged full-text search and autocomplete endpoints over stored objects",
	Long: `searchresource serves search and autocomplete endpoints for every resource
listed in the config file. Objects are kept in a bbolt store and indexed with bleve.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loadCmd)
}
