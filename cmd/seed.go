package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"linkvault/models"
)

func Seed() *cobra.Command {
	command := &cobra.Command{
		Use:   "seed",
		Short: "Write the default categories when no catalog exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeded, err := openStore(loadEnv()).SeedCatalog(models.SeedCategories())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog seeded")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already exists, nothing to do")
			}
			return nil
		},
	}

	return command
}
