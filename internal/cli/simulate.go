package cli

import (
	"github.com/spf13/cobra"

	"shiftwatch/internal/app"
)

var (
	simulatePoints    int
	simulateShiftAt   int
	simulateShiftSize float64
	simulateAlgorithm string
	simulateNotify    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run detection over a synthetic step series",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SimulateOptions{
			Points:    simulatePoints,
			ShiftAt:   simulateShiftAt,
			ShiftSize: simulateShiftSize,
			Algorithm: simulateAlgorithm,
			Notify:    simulateNotify,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulatePoints, "points", 200, "Number of synthetic points")
	simulateCmd.Flags().IntVar(&simulateShiftAt, "shift-at", 0, "Index of the injected level shift (defaults to midpoint)")
	simulateCmd.Flags().Float64Var(&simulateShiftSize, "shift-size", 5, "Magnitude of the injected shift")
	simulateCmd.Flags().StringVar(&simulateAlgorithm, "algorithm", "", "Detection algorithm (defaults to config)")
	simulateCmd.Flags().BoolVar(&simulateNotify, "notify", false, "Deliver the strongest event through the alert channel")
}
