package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"civic-apps/internal/quiz/chunks"
)

var (
	encryptTests     int
	encryptTestsOnly bool
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Build the encrypted chunk set from the database",
	Long: `Writes one encrypted chunk per topic and a set of pre-built 24-question
mock tests to --data-dir/chunks, plus index.json. Chunks are AES-GCM
sealed with LINUK_CHUNK_KEY; this keeps answers out of casual view but is
not a security boundary, since the web app holds the same key.

With --tests-only the topic chunks are kept and only the tests are redrawn.`,
	Args: cobra.NoArgs,
	RunE: runEncrypt,
}

func init() {
	encryptCmd.Flags().IntVar(&encryptTests, "tests", 0, "Number of pre-built tests (default quiz.tests)")
	encryptCmd.Flags().BoolVar(&encryptTestsOnly, "tests-only", false, "Only regenerate the pre-built tests")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	key, err := chunkKey()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	questions, err := store.Questions(ctx)
	if err != nil {
		return err
	}

	tests := encryptTests
	if tests <= 0 {
		tests = cfg.Quiz.Tests
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	build := chunks.Build
	if encryptTestsOnly {
		build = chunks.BuildTests
	}
	index, err := build(cfg.Quiz.DataDir, questions, key, tests, rng)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, topic := range index.Topics {
		fmt.Fprintf(out, "  %-40s %4d  %s\n", topic.Name, topic.Count, topic.File)
	}
	fmt.Fprintf(out, "Wrote %d topics and %d tests from %d questions to %s\n",
		len(index.Topics), len(index.Tests), len(questions), cfg.Quiz.DataDir)
	return nil
}
