package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate [version]",
	Short:       "Migrate the database schema to version, or to the latest one",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipMigrate: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target := -1
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			target = v
		}

		before, err := provider.GetSchemaVersion(ctx)
		if err != nil {
			return err
		}
		if err := provider.Migrate(ctx, target); err != nil {
			return err
		}
		after, err := provider.GetSchemaVersion(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Schema version %d -> %d\n", before, after)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
