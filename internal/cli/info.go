package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ironlake/slideraster/internal/pipeline"
	"github.com/ironlake/slideraster/internal/slide"
)

var infoCmd = &cobra.Command{
	Use:   "info <file[:mode]>",
	Short: "Print slide geometry and properties",
	Long: `Open a slide (or one of its associated images) and print its geometry,
background color and the full property map reported by the backend.

No pixels are decoded in layer mode; the image stays a lazy skeleton.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := pipeline.New()
		defer out.Close()

		if err := slide.Open(backend, args[0], out); err != nil {
			return err
		}

		w := out.Width()
		h := out.Height()
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "  size:         %d x %d (%s pixels)\n",
			w, h, humanize.Comma(int64(w)*int64(h)))
		fmt.Fprintf(cmd.OutOrStdout(), "  bands:        %d (8-bit RGB + alpha)\n", out.Bands())
		fmt.Fprintf(cmd.OutOrStdout(), "  uncompressed: %s\n",
			humanize.Bytes(uint64(w)*uint64(h)*pipeline.BytesPerPixel))
		if bg, ok := out.GetInt(slide.MetaBackground); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  background:   #%06X\n", bg)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "  metadata:")
		for _, key := range out.MetaKeys() {
			v, _ := out.Meta(key)
			fmt.Fprintf(cmd.OutOrStdout(), "    %s: %v\n", key, v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
