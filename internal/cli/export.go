package cli

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironlake/slideraster/internal/pipeline"
	"github.com/ironlake/slideraster/internal/slide"
)

var exportCmd = &cobra.Command{
	Use:   "export <file[:mode]>",
	Short: "Decode a slide region and write it as an image file",
	Long: `Decode a region of a slide layer (or a whole associated image) and write
it to an ordinary image file. The output format follows the file extension.

Without --region the whole image is decoded; for full-resolution layers of
large slides that can be a lot of pixels, so prefer a region or a deeper
pyramid layer.

Examples:
  slideraster export scan.png --region 0,0,1024,1024 -o crop.png
  slideraster export scan.png:2 -o level2.jpg
  slideraster export scan.png:label -o label.png --scale 2.0`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "output file (required)")
	exportCmd.Flags().String("region", "", "region to decode as 'x,y,w,h' (default: whole image)")
	exportCmd.Flags().Float64("scale", 1.0, "scale factor applied after decoding")
	exportCmd.MarkFlagRequired("output")

	viper.BindPFlag("export.output", exportCmd.Flags().Lookup("output"))
	viper.BindPFlag("export.region", exportCmd.Flags().Lookup("region"))
	viper.BindPFlag("export.scale", exportCmd.Flags().Lookup("scale"))
}

func runExport(cmd *cobra.Command, args []string) error {
	output := viper.GetString("export.output")
	scale := viper.GetFloat64("export.scale")

	out := pipeline.New()
	defer out.Close()

	if err := slide.Open(backend, args[0], out); err != nil {
		return err
	}

	rect := out.Bounds()
	if spec := viper.GetString("export.region"); spec != "" {
		var err error
		if rect, err = parseRegion(spec); err != nil {
			return err
		}
	}

	reg, err := out.Fetch(rect)
	if err != nil {
		return err
	}

	var result image.Image = reg.NRGBA()
	if scale != 1.0 && scale > 0 {
		result = imaging.Resize(result,
			int(float64(rect.Dx())*scale), int(float64(rect.Dy())*scale),
			imaging.Lanczos)
	}

	if err := imaging.Save(result, output); err != nil {
		return fmt.Errorf("failed to save %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%dx%d)\n",
		output, result.Bounds().Dx(), result.Bounds().Dy())
	return nil
}

// parseRegion parses an 'x,y,w,h' region specification.
func parseRegion(spec string) (image.Rectangle, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region must be in format 'x,y,w,h'")
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region component %q: %v", p, err)
		}
		vals[i] = n
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region width and height must be positive")
	}
	return image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), nil
}
