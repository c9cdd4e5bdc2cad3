package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/treevol/treevol/internal/ledger"
)

func entriesCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage the measurement ledger",
	}
	cmd.AddCommand(entriesListCmd(s))
	cmd.AddCommand(entriesAddCmd(s))
	cmd.AddCommand(entriesRemoveCmd(s))
	cmd.AddCommand(entriesClearCmd(s))
	return cmd
}

func entriesListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ledger entries in insertion order",
		Args:  cobra.NoArgs,
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			entries := book.List()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSPECIES\tLENGTH\tCIRCUMFERENCE\tVOLUME\tTRUCK")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID(), e.Species, formatVolume(e.Length), formatVolume(e.Circumference),
					formatVolume(e.Volume), truckLabel(e.Truck))
			}
			return w.Flush()
		}),
	}
}

func entriesAddCmd(s *session) *cobra.Command {
	var species, truck string
	cmd := &cobra.Command{
		Use:   "add <circumference> <length>",
		Short: "Look up the volume and append an entry",
		Args:  cobra.ExactArgs(2),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			circ, err := parseNumber("circumference", args[0])
			if err != nil {
				return err
			}
			length, err := parseNumber("length", args[1])
			if err != nil {
				return err
			}
			holder, err := s.loadLookup(cmd.Context())
			if err != nil {
				return err
			}
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			entry, err := ledger.NewRecorder(book, holder).Record(ledger.Measurement{
				Species:       species,
				Length:        length,
				Circumference: circ,
				Truck:         truck,
			})
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Added %s: %s %s m³", entry.ID(), entry.Species, formatVolume(entry.Volume))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&species, "species", "s", "", "tree species (default Unknown)")
	cmd.Flags().StringVarP(&truck, "truck", "t", "", "truck label")
	return cmd
}

func entriesRemoveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove the entry with the given id (createdAt)",
		Args:    cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			if err := book.Remove(args[0]); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Removed %s", args[0])
			return nil
		}),
	}
}

func entriesClearCmd(s *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every ledger entry",
		Args:  cobra.NoArgs,
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprint(out, "This permanently deletes all entries. Type 'yes' to continue: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
					printWarn(out, "Aborted")
					return nil
				}
			}
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			if err := book.Clear(); err != nil {
				return err
			}
			printOK(out, "Ledger cleared")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
