package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trucksCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trucks",
		Short: "Manage truck labels",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List truck labels",
		Args:  cobra.NoArgs,
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			trucks := book.Trucks()
			if len(trucks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trucks.")
				return nil
			}
			for _, t := range trucks {
				fmt.Fprintln(cmd.OutOrStdout(), truckLabel(t))
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a truck label",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			trucks, err := book.AddTruck(args[0])
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "%d truck(s)", len(trucks))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a truck label (existing entries keep their label)",
		Args:    cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			book, err := s.openLedger()
			if err != nil {
				return err
			}
			trucks, err := book.RemoveTruck(args[0])
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "%d truck(s)", len(trucks))
			return nil
		}),
	})
	return cmd
}
