// Package main provides the entry point for the ResumeSculpt HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resumesculpt",
	Short: "ResumeSculpt HTTP API Server",
	Long:  "ResumeSculpt scores resumes against job descriptions under an ATS rubric and rewrites them for better keyword and skills alignment via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
