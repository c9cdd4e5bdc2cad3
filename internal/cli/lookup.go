package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treevol/treevol/internal/ledger"
)

func lookupCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <circumference> <length>",
		Short: "Look up the volume for an exact (circumference, length) pair",
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
			vol, ok := holder.FindExactVolume(circ, length)
			if !ok {
				return fmt.Errorf("circumference %s, length %s: %w", args[0], args[1], ledger.ErrVolumeNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatVolume(vol))
			return nil
		}),
	}
}
