package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/carheater/core/heating"
)

var (
	planReady    string
	planDuration int
	planAt       string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the heating instants for a ready time and duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		if planAt != "" {
			t, err := time.Parse(time.RFC3339, planAt)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			now = t.UTC()
		}
		return printPlan(cmd.OutOrStdout(), planReady, planDuration, now)
	},
}

func init() {
	planCmd.Flags().StringVar(&planReady, "ready", heating.DefaultReadyTime.String(), "ready time HH:mm (UTC)")
	planCmd.Flags().IntVar(&planDuration, "duration", 60, "heating duration in minutes")
	planCmd.Flags().StringVar(&planAt, "at", "", "evaluate at this RFC3339 instant instead of now")
	rootCmd.AddCommand(planCmd)
}

func printPlan(w io.Writer, ready string, duration int, now time.Time) error {
	tod, err := heating.ParseTimeOfDay(ready)
	if err != nil {
		return err
	}
	if duration < 0 || duration >= 24*60 {
		return fmt.Errorf("%w: duration %d is outside 0..1439 minutes", heating.ErrInvalidConfiguration, duration)
	}
	a := heating.NextAction(tod, duration, now)
	_, err = fmt.Fprintf(w, "now:          %s\nnext ready:   %s\nnext start:   %s\nheating now:  %t\n%s %s\n",
		now.Format(time.RFC3339),
		heating.NextReadyInstant(tod, now).Format(time.RFC3339),
		heating.NextHeatingStartInstant(tod, duration, now).Format(time.RFC3339),
		heating.IsCurrentlyHeating(tod, duration, now),
		a.Phase, heating.FormatTimeUntil(a, now),
	)
	return err
}
