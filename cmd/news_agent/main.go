// Package main provides the news agent CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "news_agent",
	Short: "News aggregation and synthesis agent",
	Long:  "News agent searches multiple news providers for a topic, extracts and scores the articles it finds, and synthesizes them into a single attributed summary.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
