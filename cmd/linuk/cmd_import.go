package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civic-apps/internal/quiz/importer"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load questions from a JSON, XLSX or CSV file into the database",
	Long: `Reads questions from a file and adds those whose IDs are not already in
the database. With --replace the database is emptied first.

Spreadsheets use the columns id, topic, question, options (separated by |),
correctAnswer and explanation. The correct answer may be the option text or
its letter. Rows that fail validation are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace every question in the database")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	result, err := importer.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, msg := range result.Errors {
		fmt.Fprintf(out, "skipped %s\n", msg)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var added int
	if importReplace {
		added, err = store.ReplaceAll(ctx, result.Questions)
	} else {
		added, err = store.AddNew(ctx, result.Questions)
	}
	if err != nil {
		return err
	}

	logger.Info("questions imported",
		zap.String("file", args[0]),
		zap.Int("rows", result.Processed),
		zap.Int("valid", len(result.Questions)),
		zap.Int("added", added),
		zap.Bool("replace", importReplace))
	fmt.Fprintf(out, "Read %d rows, %d valid, %d added, %d skipped.\n",
		result.Processed, len(result.Questions), added, len(result.Errors))
	return nil
}
