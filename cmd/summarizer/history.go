package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func historyCmd(root *rootOptions) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent results, or print one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			if a.history == nil {
				return errors.New("history is disabled: set history.path in the config")
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				res, err := a.history.Get(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}
				if res.OK() {
					fmt.Fprintln(out, res.Text)
				} else {
					fmt.Fprintln(out, res.Error)
				}
				return nil
			}

			results, err := a.history.List(limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tSURFACE\tMODE\tOUTCOME\tELAPSED\tFILE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1fs\t%s\n",
					r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Surface, r.Config.Mode,
					r.Outcome, r.Elapsed.Seconds(), r.FileName)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
