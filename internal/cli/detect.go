package cli

import (
	"github.com/spf13/cobra"

	"shiftwatch/internal/app"
)

var (
	detectInput     string
	detectAlgorithm string
	detectMaxPoints int
	detectJSON      bool
	detectCSVPath   string
	detectPNGPath   string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect change points in a CSV series",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.DetectOptions{
			InputPath:  detectInput,
			Algorithm:  detectAlgorithm,
			MaxPoints:  detectMaxPoints,
			JSONOutput: detectJSON,
			CSVPath:    detectCSVPath,
			PNGPath:    detectPNGPath,
		}
		return getApp().Detect(cmd.Context(), opts)
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectInput, "input", "", "Path to input CSV file")
	detectCmd.Flags().StringVar(&detectAlgorithm, "algorithm", "", "Detection algorithm (defaults to config)")
	detectCmd.Flags().IntVar(&detectMaxPoints, "max-points", 0, "Sampling budget before detection (defaults to config)")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Emit events as JSON")
	detectCmd.Flags().StringVar(&detectCSVPath, "csv", "", "Path to write detected events as CSV")
	detectCmd.Flags().StringVar(&detectPNGPath, "png", "", "Path to write annotated PNG chart")
}
