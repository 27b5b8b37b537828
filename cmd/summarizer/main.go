package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var opts rootOptions
	root := &cobra.Command{
		Use:           "summarizer",
		Short:         "Summarize text or PDF documents with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to summarizer.yaml (default: ./summarizer.yaml if present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")

	root.AddCommand(textCmd(&opts), pdfCmd(&opts), serveCmd(&opts), historyCmd(&opts))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
