package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cgeisenberger/lisanon/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run preflight checks (config, preset, surname list, NER sidecar)",
	Long:  "Verifies the configuration loads, the preset is valid, the surname dictionary is readable, and the NER sidecar answers its health endpoint.",
	RunE:  runDoctor,
}

var (
	doctorJSON       bool
	doctorSkipEngine bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "emit the report as JSON")
	doctorCmd.Flags().BoolVar(&doctorSkipEngine, "skip-engine", false, "skip sidecar connectivity checks")
	doctorCmd.Flags().StringP("preset", "p", "", "preset name or file to check (default: configured preset)")
	doctorCmd.Flags().String("engine-url", "", "sidecar base URL to check (default: configured URL)")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	presetRef, _ := cmd.Flags().GetString("preset")
	engineURL, _ := cmd.Flags().GetString("engine-url")

	report := doctor.Run(ctx, doctor.Options{
		PresetRef:  presetRef,
		EngineURL:  engineURL,
		SkipEngine: doctorSkipEngine,
	})

	out := cmd.OutOrStdout()
	if doctorJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, c := range report.Checks {
			mark := "✓"
			switch c.Status {
			case "warn":
				mark = "⚠"
			case "fail":
				mark = "✗"
			}
			fmt.Fprintf(out, "%s %s: %s\n", mark, c.Name, c.Message)
			if c.Fix != "" && c.Status != "pass" {
				fmt.Fprintf(out, "  fix: %s\n", c.Fix)
			}
		}
		fmt.Fprintf(out, "\n%d passed, %d warnings, %d failed\n",
			report.Summary.Pass, report.Summary.Warn, report.Summary.Fail)
	}

	if report.Status == "fail" {
		return fmt.Errorf("preflight checks failed")
	}
	return nil
}
