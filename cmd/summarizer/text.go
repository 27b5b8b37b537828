package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

func textCmd(root *rootOptions) *cobra.Command {
	var mode, length, inline string
	var oo outputOptions

	cmd := &cobra.Command{
		Use:   "text [file|-]",
		Short: "Summarize plain text or list its key points",
		Long:  "Reads text from --text, a file argument, or standard input when the argument is missing or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ai.ParseConfig(mode, length, "")
			if err != nil {
				return err
			}
			text := inline
			if !cmd.Flags().Changed("text") {
				text, err = readInput(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
			}

			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			g, err := a.summarizer(cmd.Context())
			if err != nil {
				return err
			}
			o := orchestrator.New(orchestrator.SurfaceText, g, a.orchestratorOptions(
				orchestrator.WithObserver(progressPrinter(cmd.ErrOrStderr())),
			)...)
			res := o.Run(cmd.Context(), orchestrator.Input{Text: text, Config: cfg})
			return printOutcome(cmd.OutOrStdout(), cmd.ErrOrStderr(), o, res, oo)
		},
	}
	cmd.Flags().StringVarP(&inline, "text", "t", "", "text to process instead of a file or stdin")
	cmd.Flags().StringVarP(&mode, "mode", "m", "summary", "output: summary|keypoints")
	cmd.Flags().StringVarP(&length, "length", "l", "medium", "summary length: short|medium|long")
	cmd.Flags().BoolVar(&oo.copy, "copy", false, "copy the result to the clipboard")
	cmd.Flags().BoolVar(&oo.asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	return string(b), err
}
