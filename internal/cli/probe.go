package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironlake/slideraster/internal/slide"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Check whether a file is a supported pyramidal slide",
	Long: `Check whether a file can be read as a pyramidal slide.

Generic tiled containers without pyramid semantics are declined; those are
the territory of a plain tiled-image reader. The exit status is zero only
for supported slides.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !slide.Probe(backend, args[0]) {
			return fmt.Errorf("%s: not a supported pyramidal slide", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: supported pyramidal slide\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
