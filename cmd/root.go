package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardpress",
	Short: "Tool for generating card images from card data and SVG templates",
	Long: `Cardpress is a command-line tool that turns card data files into finished card images.
Each record is substituted into the SVG template of its category, text is wrapped and
centered, and the result is rasterized to <output>/<category>/<id>.png.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/cardpress/config.toml)")

	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
