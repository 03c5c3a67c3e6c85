package chunks

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"civic-apps/internal/quiz"
)

const (
	IndexFile = "index.json"
	ChunkDir  = "chunks"

	// DefaultTests is how many pre-built tests a chunk set carries.
	DefaultTests = 15
	defaultTopic = "General"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// safeName turns a topic into a file name stem: punctuation dropped,
// spaces to underscores, lower case.
func safeName(topic string) string {
	name := unsafeChars.ReplaceAllString(topic, "")
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

func topicFile(topic string) string {
	return "topic_" + safeName(topic) + ".enc"
}

func testFile(n int) string {
	return "test_" + strconv.Itoa(n) + ".enc"
}

// Build writes a complete chunk set under dir: chunks/topic_*.enc,
// chunks/test_*.enc and index.json. Topics keep first-seen order.
func Build(dir string, questions []quiz.Question, key []byte, tests int, rng *rand.Rand) (quiz.Index, error) {
	if len(questions) == 0 {
		return quiz.Index{}, quiz.ErrNoQuestions
	}
	if err := os.MkdirAll(filepath.Join(dir, ChunkDir), 0o755); err != nil {
		return quiz.Index{}, err
	}

	var order []string
	byTopic := make(map[string][]quiz.Question)
	for _, question := range questions {
		topic := strings.TrimSpace(question.Topic)
		if topic == "" {
			topic = defaultTopic
			question.Topic = topic
		}
		if _, ok := byTopic[topic]; !ok {
			order = append(order, topic)
		}
		byTopic[topic] = append(byTopic[topic], question)
	}

	index := quiz.Index{Topics: make([]quiz.TopicInfo, 0, len(order))}
	used := make(map[string]int)
	for _, topic := range order {
		file := topicFile(topic)
		if n := used[file]; n > 0 {
			file = strings.TrimSuffix(file, ".enc") + "_" + strconv.Itoa(n+1) + ".enc"
		}
		used[topicFile(topic)]++

		if err := writeChunk(dir, file, key, byTopic[topic]); err != nil {
			return quiz.Index{}, err
		}
		index.Topics = append(index.Topics, quiz.TopicInfo{
			Name:  topic,
			File:  file,
			Count: len(byTopic[topic]),
		})
	}

	var err error
	if index.Tests, err = writeTests(dir, questions, key, tests, rng); err != nil {
		return quiz.Index{}, err
	}
	if err := writeIndex(dir, index); err != nil {
		return quiz.Index{}, err
	}
	return index, nil
}

// BuildTests regenerates only the pre-built test chunks of an existing set
// and rewrites the index to match.
func BuildTests(dir string, questions []quiz.Question, key []byte, tests int, rng *rand.Rand) (quiz.Index, error) {
	if len(questions) == 0 {
		return quiz.Index{}, quiz.ErrNoQuestions
	}

	index, err := ReadIndex(dir)
	if err != nil {
		return quiz.Index{}, err
	}
	if index.Tests, err = writeTests(dir, questions, key, tests, rng); err != nil {
		return quiz.Index{}, err
	}
	if err := writeIndex(dir, index); err != nil {
		return quiz.Index{}, err
	}
	return index, nil
}

func ReadIndex(dir string) (quiz.Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return quiz.Index{}, err
	}
	var index quiz.Index
	if err := json.Unmarshal(data, &index); err != nil {
		return quiz.Index{}, fmt.Errorf("decode %s: %w", IndexFile, err)
	}
	return index, nil
}

func writeTests(dir string, questions []quiz.Question, key []byte, tests int, rng *rand.Rand) ([]quiz.TestInfo, error) {
	if tests <= 0 {
		tests = DefaultTests
	}
	if err := os.MkdirAll(filepath.Join(dir, ChunkDir), 0o755); err != nil {
		return nil, err
	}

	infos := make([]quiz.TestInfo, 0, tests)
	for i := 1; i <= tests; i++ {
		sample, err := quiz.Sample(rng, questions, "", quiz.MockTestSize)
		if err != nil {
			return nil, err
		}
		for j := range sample {
			sample[j] = quiz.ShuffleOptions(rng, sample[j])
		}

		file := testFile(i)
		if err := writeChunk(dir, file, key, sample); err != nil {
			return nil, err
		}
		infos = append(infos, quiz.TestInfo{ID: quiz.TestID(strconv.Itoa(i)), File: file})
	}
	return infos, nil
}

func writeChunk(dir, file string, key []byte, questions []quiz.Question) error {
	payload, err := EncryptQuestions(key, questions)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", file, err)
	}
	return writeFileAtomic(filepath.Join(dir, ChunkDir, file), []byte(payload))
}

func writeIndex(dir string, index quiz.Index) error {
	if index.Topics == nil {
		index.Topics = []quiz.TopicInfo{}
	}
	if index.Tests == nil {
		index.Tests = []quiz.TestInfo{}
	}
	data, err := json.MarshalIndent(index, "", "    ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, IndexFile), data)
}

// writeFileAtomic replaces path through a rename so readers never see a
// partly written chunk.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
