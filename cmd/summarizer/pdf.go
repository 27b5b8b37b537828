package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

func pdfCmd(root *rootOptions) *cobra.Command {
	var mode, length, focus string
	var oo outputOptions

	cmd := &cobra.Command{
		Use:   "pdf <file.pdf>",
		Short: "Summarize a PDF or list its key points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ai.ParseConfig(mode, length, focus)
			if err != nil {
				return err
			}
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			g, err := a.summarizer(cmd.Context())
			if err != nil {
				return err
			}
			ex, err := a.extractor()
			if err != nil {
				return err
			}
			o := orchestrator.New(orchestrator.SurfacePDF, g, a.orchestratorOptions(
				orchestrator.WithExtractor(ex),
				orchestrator.WithObserver(progressPrinter(cmd.ErrOrStderr())),
			)...)

			declared := mime.TypeByExtension(filepath.Ext(path))
			doc, err := o.Select(filepath.Base(path), declared, data, info.ModTime())
			if err != nil {
				return err
			}
			a.log.Debug("pdf selected", zap.String("file", doc.Name), zap.Int64("bytes", doc.Size))

			res := o.Run(cmd.Context(), orchestrator.Input{Config: cfg})
			if res.OK() && !oo.asJSON {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d pages, %d words, %.2f MB\n",
					doc.Name, res.PageCount, res.WordCount, float64(doc.Size)/1024/1024)
			}
			return printOutcome(cmd.OutOrStdout(), cmd.ErrOrStderr(), o, res, oo)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "summary", "output: summary|keypoints")
	cmd.Flags().StringVarP(&length, "length", "l", "medium", "summary length: short|medium|long")
	cmd.Flags().StringVarP(&focus, "focus", "f", "general", "focus: general|academic|business|technical|executive")
	cmd.Flags().BoolVar(&oo.copy, "copy", false, "copy the result to the clipboard")
	cmd.Flags().BoolVar(&oo.asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&oo.showText, "show-text", false, "also print the text extracted from the PDF")
	return cmd
}
