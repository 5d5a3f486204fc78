package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bug-reproducer/internal/infrastructure/config"
	"bug-reproducer/internal/infrastructure/env"
)

var (
	// Version is the application version (set during build).
	Version = "dev"

	configFile string
	v          = viper.New()
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "repro",
	Short:   "Reproduce web application bugs with an LLM-driven browser",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := env.Load("."); err != nil {
			return err
		}
		loaded, err := config.Load(v, configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default ./repro.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
