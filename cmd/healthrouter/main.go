// Package main provides the healthrouter CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/healthrouter/cli"
)

var (
	// Global flags
	provider string
	dbPath   string
	index    string
	logLevel string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "healthrouter",
		Short: "Route healthcare questions to a SQL database or policy documents",
		Long: `Answers natural-language healthcare questions from one of two sources:

- SQL_Agent: patients, visits, prescriptions and medications in SQLite
- PDF_RetrievalQA: privacy, rights and coverage passages from the document index

Each question is routed to exactly one tool and returned as a uniform answer envelope.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the healthcare SQLite database")
	rootCmd.PersistentFlags().StringVar(&index, "index", "", "Document index backend (file, chroma, pgvector)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(sampleDBCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider:     provider,
		DBPath:       dbPath,
		IndexBackend: index,
		LogLevel:     logLevel,
		Verbose:      verbose,
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat HTTP endpoint",
		Long: `Start the HTTP server.

Routes:
- POST /chat     {"query": "..."} -> answer envelope
- GET  /health   readiness of the LLM backend
- GET  /tools    routing tools
- GET  /metrics  Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			opts.Addr = addr
			return cli.Serve(context.Background(), opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SERVER_ADDR or :8000)")

	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and print the envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ask(context.Background(), args[0], options(), cmd.OutOrStdout())
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(cmd.OutOrStdout(), verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}

func sampleDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-db [path]",
		Short: "Write a small demo healthcare database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "healthcare.db"
			if len(args) == 1 {
				path = args[0]
			}
			return cli.SampleDB(path, cmd.OutOrStdout())
		},
	}
}
