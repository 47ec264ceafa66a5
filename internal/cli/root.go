// Package cli wires the slideraster commands: probing, inspecting and
// exporting pyramidal slide images through the demand pipeline.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ironlake/slideraster/internal/rasterslide"
	"github.com/ironlake/slideraster/internal/slide"
)

var cfgFile string

// backend is the slide backend all commands read through.
var backend slide.Backend = rasterslide.New()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slideraster",
	Short: "Random access to pyramidal slide images without loading them whole",
	Long: `slideraster exposes a pyramidal slide image, or one of its small bundled
associated images, as a single addressable raster. Regions are decoded
lazily in bounded chunks behind a tile cache, so gigapixel slides can be
inspected and cropped without materializing the whole image.

A slide is addressed by its path plus an optional mode suffix:

  image.png            full-resolution layer 0
  image.png:2          pyramid layer 2
  image.png:thumbnail  associated image named "thumbnail"

Examples:
  # Is this file a supported slide?
  slideraster probe scan.png

  # Dimensions, pyramid geometry and slide properties
  slideraster info scan.png

  # Export a region of layer 1 as PNG
  slideraster export scan.png:1 --region 1024,2048,512,512 -o crop.png

  # Export the bundled thumbnail
  slideraster export scan.png:thumbnail -o thumb.png`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			logger, err := zap.NewDevelopment()
			if err == nil {
				slide.SetLogger(logger)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", version, commit)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.slideraster.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slideraster")
	}

	viper.SetEnvPrefix("SLIDERASTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
