package main

import (
	"fmt"

	"github.com/meghashyamc/searchresource/config"
	"github.com/meghashyamc/searchresource/db/kvdb"
	"github.com/meghashyamc/searchresource/db/searchdb"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/services/index"
	"github.com/meghashyamc/searchresource/validation"
	"github.com/spf13/cobra"
)

var removeModel string

var loadCmd = &cobra.Command{
	Use:   "load [<file>... | --remove <model> [<id>...]]",
	Short: "Store and index the records in YAML or JSON files",
	Long: `Each file holds a list of records:

  - model: note
    id: "1"
    fields:
      title: Grocery list

Records without an id get a generated one. With --remove, the arguments are
ids of the given model to delete instead; with no ids every object of the
model is deleted.

The server must not be running, since it holds the object store lock.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if removeModel != "" {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := logger.New(cfg.GetLogLevel())

		kvDB, err := kvdb.New(log, cfg.GetKVDBPath())
		if err != nil {
			return err
		}
		defer kvDB.Close()

		searchDB, err := searchdb.New(log, cfg.GetStoragePath(), cfg.GetIndexPath())
		if err != nil {
			return err
		}
		defer searchDB.Close()

		validator, err := validation.New(log)
		if err != nil {
			return err
		}

		loader := index.New(log, searchDB, kvDB, validator)

		if removeModel != "" && len(args) == 0 {
			removed, err := loader.RemoveAll(removeModel)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d %s objects\n", removed, removeModel)
			return nil
		}

		if removeModel != "" {
			if err := loader.Remove(removeModel, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d %s objects\n", len(args), removeModel)
			return nil
		}

		for _, path := range args {
			loaded, err := loader.LoadFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: loaded %d records\n", path, loaded)
		}

		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&removeModel, "remove", "", "delete the given ids of this model instead of loading files")
}
