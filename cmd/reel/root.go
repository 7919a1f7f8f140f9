package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reelvm/reel/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "reel",
	Short: "Reel is a frame-stepped execution engine for authored action graphs",
	Long:  `Reel runs authored action graphs: dialog, movement, waits and branching, stepped once per frame the way a game loop would drive them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing graph YAML files")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(logging.ParseLevel(level))
}
