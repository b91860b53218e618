package cli

import (
	"github.com/spf13/cobra"

	"github.com/ngmaloney/swellwatch/internal/app"
)

var spotsFile string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate every trigger once and publish matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Evaluate(cmd.Context(), app.EvaluateOptions{SpotsFile: spotsFile})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Evaluate triggers every WATCH_INTERVAL until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.EvaluateOptions{SpotsFile: spotsFile})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{evaluateCmd, watchCmd} {
		cmd.Flags().StringVar(&spotsFile, "spots", "", "JSON file of spots and their triggers")
		_ = cmd.MarkFlagRequired("spots")
	}
}
