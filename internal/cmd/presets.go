package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cgeisenberger/lisanon/internal/preset"
)

var presetsShow string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets or show one with resolved defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "presets")
		defer span.End()

		if presetsShow != "" {
			p, err := preset.Load(presetsShow)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(p)
			if err != nil {
				return fmt.Errorf("rendering preset: %w", err)
			}
			fmt.Print(string(out))
			return nil
		}

		names := preset.EmbeddedNames()
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

func init() {
	presetsCmd.Flags().StringVar(&presetsShow, "show", "", "print a preset (name or path) with defaults resolved")
	rootCmd.AddCommand(presetsCmd)
}
