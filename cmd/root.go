package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"linkvault/common"
	"linkvault/store"
)

var (
	dataDir    string
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkvault",
	Short: "shared link catalog with an admin panel",
	Example: `linkvault serve --port 8080
linkvault password <new-password>
linkvault seed --data-dir ./data`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.LoadDotEnv()
		env := common.LoadEnv()
		common.SetupLogging(env.LogLevel, env.LogFormat)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the JSON documents (default $DATA_DIR or data)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path of the site config document (default $CONFIG_FILE or config.json)")

	rootCmd.AddCommand(Serve())
	rootCmd.AddCommand(Password())
	rootCmd.AddCommand(Seed())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

// loadEnv reads the environment and lets persistent flags override it.
func loadEnv() common.Env {
	env := common.LoadEnv()
	if dataDir != "" {
		env.DataDir = dataDir
	}
	if configFile != "" {
		env.ConfigFile = configFile
	}
	return env
}

func openStore(env common.Env) *store.Store {
	return store.New(env.DataDir, env.ConfigFile)
}
