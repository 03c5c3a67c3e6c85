package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"civic-apps/internal/cli"
	"civic-apps/internal/config"
	"civic-apps/internal/quiz"
	"civic-apps/internal/quiz/chunks"
	"civic-apps/internal/quiz/rest"
)

var (
	playTopic  string
	playTest   bool
	playSource string
	playServer string
	playFile   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Practise a topic or sit a timed mock test",
	Long: `Plays a session in the terminal. Answer with the option letter; type
back or next to move between questions and finish to score. Mock tests are
timed and finish on their own when the clock runs out.

Sources:
  db      the local question database (results are saved there)
  chunks  the encrypted chunk set in --data-dir
  rest    a running "linuk serve" at --server (results are posted back)
  json    a JSON array of questions in --file

Without --topic or --test the available topics are listed.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playTopic, "topic", "t", "", "Topic to practise")
	playCmd.Flags().BoolVar(&playTest, "test", false, "Sit a timed 24-question mock test")
	playCmd.Flags().StringVar(&playSource, "source", "db", "Question source: db, chunks, rest or json")
	playCmd.Flags().StringVar(&playServer, "server", "http://127.0.0.1:8000", "Quiz service URL for --source rest")
	playCmd.Flags().StringVar(&playFile, "file", "", "Question file for --source json")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	source, results, closeFn, err := openPlaySource()
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	if !playTest && playTopic == "" {
		index, err := source.Index(ctx)
		if err != nil {
			return cli.DescribeSourceError(err, playServer)
		}
		fmt.Fprintln(out, "Topics:")
		for _, topic := range index.Topics {
			fmt.Fprintf(out, "  %-40s %d questions\n", topic.Name, topic.Count)
		}
		fmt.Fprintln(out, "\nRun with --topic NAME to practise, or --test for a mock test.")
		return nil
	}

	service := quiz.NewService(source, results, quiz.ServiceConfig{
		TestDuration: config.Duration(cfg.Quiz.TestDuration, quiz.DefaultTestDuration),
	}, logger)

	playCfg := cli.Config{Mode: quiz.ModeTopic, Topic: playTopic}
	if playTest {
		playCfg = cli.Config{Mode: quiz.ModeTest}
	}
	if _, err := cli.Play(ctx, service, cmd.InOrStdin(), out, playCfg); err != nil {
		return cli.DescribeSourceError(err, playServer)
	}
	return nil
}

func openPlaySource() (quiz.Source, quiz.ResultStore, func(), error) {
	noop := func() {}
	switch playSource {
	case "db":
		store, err := openStore()
		if err != nil {
			return nil, nil, noop, err
		}
		return store, store, func() { _ = store.Close() }, nil
	case "chunks":
		key, err := chunkKey()
		if err != nil {
			return nil, nil, noop, err
		}
		return chunks.NewDirSource(cfg.Quiz.DataDir, key, nil, logger), nil, noop, nil
	case "rest":
		client := rest.NewClient(playServer, &http.Client{Timeout: 10 * time.Second})
		return client, client, noop, nil
	case "json":
		if playFile == "" {
			return nil, nil, noop, errors.New("--file is required for --source json")
		}
		f, err := os.Open(playFile)
		if err != nil {
			return nil, nil, noop, err
		}
		defer f.Close()
		source, err := quiz.LoadMemorySource(f, nil)
		if err != nil {
			return nil, nil, noop, err
		}
		return source, nil, noop, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown source %q (want db, chunks, rest or json)", playSource)
	}
}
