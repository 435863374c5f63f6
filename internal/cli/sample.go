package cli

import (
	"github.com/spf13/cobra"

	"shiftwatch/internal/app"
)

var (
	sampleInput     string
	sampleOutput    string
	sampleMaxPoints int
	sampleMethod    string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Reduce a CSV series to a bounded number of points",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SampleOptions{
			InputPath:  sampleInput,
			OutputPath: sampleOutput,
			MaxPoints:  sampleMaxPoints,
			Method:     sampleMethod,
		}
		return getApp().Sample(cmd.Context(), opts)
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleInput, "input", "", "Path to input CSV file")
	sampleCmd.Flags().StringVar(&sampleOutput, "output", "", "Path to write sampled CSV")
	sampleCmd.Flags().IntVar(&sampleMaxPoints, "max-points", 0, "Point budget (defaults to config)")
	sampleCmd.Flags().StringVar(&sampleMethod, "method", "", "Sampling method (defaults to config)")
}
