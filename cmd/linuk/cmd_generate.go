package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civic-apps/internal/config"
	"civic-apps/internal/quiz"
	"civic-apps/internal/quiz/generate"
)

var (
	generateTarget int
	generateModel  string
	generateOut    string
)

var generateCmd = &cobra.Command{
	Use:   "generate [source-text-file]",
	Short: "Draft new questions from study material with Gemini",
	Long: `Splits a plain-text study handbook into chunks and asks Gemini for batches
of multiple-choice questions until the target is reached. New questions are
numbered after the highest ID in the database and saved batch by batch, so
an interrupted run keeps what it already produced.

With --out the questions are written to a JSON file instead of the
database. GEMINI_API_KEY must be set.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateTarget, "target", 0, "Number of questions to generate (default generate.target)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Gemini model (default generate.model)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Write questions to this JSON file instead of the database")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.Questions(ctx)
	if err != nil {
		return err
	}
	startID := generate.NextID(existing)

	model := generateModel
	if model == "" {
		model = cfg.Generate.Model
	}
	gemini, err := generate.NewGemini(ctx, cfg.Generate.APIKey, model)
	if err != nil {
		return err
	}

	target := generateTarget
	if target <= 0 {
		target = cfg.Generate.Target
	}
	generator := generate.New(gemini, generate.Config{
		ChunkSize: cfg.Generate.ChunkSize,
		BatchSize: cfg.Generate.BatchSize,
		Target:    target,
		Pause:     config.Duration(cfg.Generate.Pause, generate.DefaultPause),
	}, logger)

	var onBatch func([]quiz.Question) error
	if generateOut == "" {
		onBatch = func(batch []quiz.Question) error {
			added, err := store.AddNew(ctx, batch)
			if err != nil {
				return err
			}
			logger.Info("batch saved", zap.Int("added", added))
			return nil
		}
	}

	started := time.Now()
	questions, err := generator.Generate(ctx, string(text), startID, onBatch)
	if err != nil && len(questions) == 0 {
		return err
	}
	if err != nil {
		logger.Warn("generation stopped early", zap.Error(err), zap.Int("kept", len(questions)))
	}

	if generateOut != "" {
		data, mErr := json.MarshalIndent(questions, "", "  ")
		if mErr != nil {
			return mErr
		}
		if wErr := os.WriteFile(generateOut, data, 0o644); wErr != nil {
			return wErr
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d questions (IDs from %d) in %s\n",
		len(questions), startID, time.Since(started).Round(time.Second))
	if err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}
