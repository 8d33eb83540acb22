package main

import (
	"context"
	"os"

	"github.com/sandevgo/edabot/internal/config"
	"github.com/sandevgo/edabot/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "eda",
	Short: "EDA — Electronic Data Assistance",
	Long:  `EDA answers questions about regional statistics publications using retrieval-augmented generation.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
