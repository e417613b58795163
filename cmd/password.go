package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"linkvault/settings"
)

// Password resets the admin password offline, for when it is lost.
func Password() *cobra.Command {
	command := &cobra.Command{
		Use:   "password <new-password>",
		Short: "Set the admin password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := loadEnv()
			if err := settings.NewService(openStore(env)).SetPassword(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin password updated in %s\n", env.ConfigFile)
			return nil
		},
	}

	return command
}
