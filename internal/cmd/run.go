package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cgeisenberger/lisanon/internal/config"
	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/pipeline"
	"github.com/cgeisenberger/lisanon/internal/preset"
	"github.com/cgeisenberger/lisanon/internal/table"
	"github.com/cgeisenberger/lisanon/internal/vault"
)

var (
	runInput         string
	runOutput        string
	runVaultPath     string
	runPreset        string
	runEngineURL     string
	runSkipNER       bool
	runExtraSurnames []string
	runDropPrefixes  []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "De-identify a LIS export file",
	Long: `Reads a delimited LIS export, runs the de-identification pipeline
and writes the result. When --vault names an existing JSON file, its
tokens are reused so identifiers stay stable across batches; the
extended vault is written back to the same file after the run.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input export file (required)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output file (required)")
	runCmd.Flags().StringVar(&runVaultPath, "vault", "", "vault JSON file, loaded if present and rewritten after the run")
	runCmd.Flags().StringVarP(&runPreset, "preset", "p", "", "preset name or path (default from config: lis_default)")
	runCmd.Flags().StringVar(&runEngineURL, "engine-url", "", "NER sidecar URL (default from config)")
	runCmd.Flags().BoolVar(&runSkipNER, "skip-ner", false, "skip the NER pass (offline runs without a sidecar)")
	runCmd.Flags().StringSliceVar(&runExtraSurnames, "extra-surname", nil, "additional surname for the dictionary pass (repeatable)")
	runCmd.Flags().StringSliceVar(&runDropPrefixes, "drop-prefix", nil, "additional column prefix to drop (repeatable)")
	_ = runCmd.MarkFlagRequired("input")
	_ = runCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "run")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if runPreset == "" {
		runPreset = cfg.Preset
	}
	if runEngineURL == "" {
		runEngineURL = cfg.EngineURL
	}

	p, err := preset.Load(runPreset)
	if err != nil {
		return err
	}
	if runSkipNER {
		p.Redaction.Passes = withoutPass(p.Redaction.Passes, "ner")
	}

	tbl, err := table.ReadCSVFile(runInput, cfg.CSVSeparator)
	if err != nil {
		return err
	}

	vlt := vault.New()
	if runVaultPath != "" {
		if data, err := os.ReadFile(runVaultPath); err == nil {
			if vlt, err = vault.Decode(data); err != nil {
				return fmt.Errorf("loading vault %s: %w", runVaultPath, err)
			}
			log.Info().Str("path", runVaultPath).Int("entries", len(vlt)).Msg("vault_loaded")
		}
	}

	var ner engine.NameRedactor
	if !runSkipNER {
		ner = engine.NewHTTPEngine(runEngineURL, cfg.EngineTimeout)
	}

	res, err := pipeline.Run(ctx, tbl, pipeline.Options{
		Preset:            p,
		Vault:             vlt,
		Engine:            ner,
		ExtraSurnames:     runExtraSurnames,
		ExtraDropPrefixes: runDropPrefixes,
	})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "! %s\n", w)
	}

	out, err := os.Create(runOutput)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", runOutput, err)
	}
	defer out.Close()
	if err := res.Table.WriteCSV(out, cfg.CSVSeparator); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if runVaultPath != "" {
		data, err := res.Vault.Encode()
		if err != nil {
			return fmt.Errorf("encoding vault: %w", err)
		}
		if err := os.WriteFile(runVaultPath, data, 0o600); err != nil {
			return fmt.Errorf("writing vault %s: %w", runVaultPath, err)
		}
	}

	log.Info().
		Int("rows", res.Table.Rows()).
		Int("vault_entries", len(res.Vault)).
		Str("output", runOutput).
		Msg("run_complete")
	fmt.Printf("✓ De-identified %d rows → %s\n", res.Table.Rows(), runOutput)
	return nil
}

func withoutPass(passes []string, name string) []string {
	var out []string
	for _, p := range passes {
		if p != name {
			out = append(out, p)
		}
	}
	return out
}
