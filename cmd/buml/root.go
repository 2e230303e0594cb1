package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/buml/internal/config"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "buml",
	Short: "B-UML domain modeling over the Model Context Protocol",
	Long: `buml builds B-UML domain models through MCP tool calls and turns them
into SQL, Python, Java, JSON Schema, RDF, OpenAPI and more.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Log.Format, _ = cmd.Flags().GetString("log-format")
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		// Logs go to stderr; stdout carries the stdio JSON-RPC stream.
		l, err := loaded.Logger(os.Stderr)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
