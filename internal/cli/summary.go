package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/treevol/treevol/internal/ledger"
)

func summaryCmd(s *session) *cobra.Command {
	var truck string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show per-species totals",
		Args:  cobra.NoArgs,
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			summary := ledger.Summarize(book.List(), strings.TrimSpace(truck))
			out := cmd.OutOrStdout()

			title := "All trucks"
			if summary.Truck != "" {
				title = "Truck " + summary.Truck
			}
			fmt.Fprintln(out, heading(title))
			if summary.Count == 0 {
				fmt.Fprintln(out, "No entries.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SPECIES\tCOUNT\tTOTAL (m³)")
			for _, g := range summary.Groups {
				fmt.Fprintf(w, "%s\t%d\t%s\n", g.Species, g.Count, formatTotal(g.Total))
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", heading("TOTAL"), summary.Count, formatTotal(summary.GrandTotal))
			return w.Flush()
		}),
	}
	cmd.Flags().StringVarP(&truck, "truck", "t", "", "only count entries for this truck")
	return cmd
}
