package chunks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"civic-apps/internal/quiz"
)

var errChunkNotFound = errors.New("chunk not found")

type loader interface {
	load(ctx context.Context, name string) ([]byte, error)
}

// Source serves questions from a chunk set. Decrypted chunks are cached per
// file until Reset.
type Source struct {
	loader loader
	key    []byte
	logger *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	index  *quiz.Index
	chunks map[string][]quiz.Question
}

// NewDirSource reads the chunk set written by Build into dir.
func NewDirSource(dir string, key []byte, rng *rand.Rand, logger *zap.Logger) *Source {
	return newSource(dirLoader{dir: dir}, key, rng, logger)
}

// NewHTTPSource fetches index.json and chunks/ below baseURL.
func NewHTTPSource(baseURL string, key []byte, httpClient *http.Client, rng *rand.Rand, logger *zap.Logger) *Source {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return newSource(httpLoader{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}, key, rng, logger)
}

func newSource(l loader, key []byte, rng *rand.Rand, logger *zap.Logger) *Source {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		loader: l,
		key:    key,
		logger: logger,
		rng:    rng,
		chunks: make(map[string][]quiz.Question),
	}
}

// Reset drops the cached index and chunks so the next read sees files
// rewritten by BuildTests.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
	s.chunks = make(map[string][]quiz.Question)
}

func (s *Source) Index(ctx context.Context) (quiz.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(ctx)
}

func (s *Source) TopicQuestions(ctx context.Context, topic string, limit int) ([]quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.indexLocked(ctx)
	if err != nil {
		return nil, err
	}

	topic = strings.TrimSpace(topic)
	for _, info := range index.Topics {
		if !strings.EqualFold(info.Name, topic) || info.File == "" {
			continue
		}
		questions, err := s.chunkLocked(ctx, info.File)
		if err != nil {
			return nil, err
		}
		return quiz.Sample(s.rng, questions, "", limit)
	}
	return nil, quiz.ErrNoQuestions
}

// TestQuestions returns one of the pre-built tests at random.
func (s *Source) TestQuestions(ctx context.Context, limit int) ([]quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.indexLocked(ctx)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, test := range index.Tests {
		if test.File != "" {
			files = append(files, test.File)
		}
	}
	if len(files) == 0 {
		return nil, quiz.ErrNoQuestions
	}

	file := files[s.rng.Intn(len(files))]
	questions, err := s.chunkLocked(ctx, file)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, quiz.ErrNoQuestions
	}

	out := make([]quiz.Question, len(questions))
	copy(out, questions)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Source) indexLocked(ctx context.Context) (quiz.Index, error) {
	if s.index != nil {
		return *s.index, nil
	}

	data, err := s.loader.load(ctx, IndexFile)
	if err != nil {
		return quiz.Index{}, fmt.Errorf("load index: %w", err)
	}
	var index quiz.Index
	if err := json.Unmarshal(data, &index); err != nil {
		return quiz.Index{}, fmt.Errorf("decode index: %w", err)
	}
	s.index = &index
	return index, nil
}

func (s *Source) chunkLocked(ctx context.Context, file string) ([]quiz.Question, error) {
	if cached, ok := s.chunks[file]; ok {
		return cached, nil
	}
	if !validChunkName(file) {
		return nil, fmt.Errorf("%w: bad chunk name %q", ErrInvalidPayload, file)
	}

	data, err := s.loader.load(ctx, path.Join(ChunkDir, file))
	if errors.Is(err, errChunkNotFound) {
		return nil, quiz.ErrNoQuestions
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", file, err)
	}

	questions, err := DecryptQuestions(s.key, string(data))
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", file, err)
	}
	s.logger.Debug("chunk loaded", zap.String("file", file), zap.Int("questions", len(questions)))
	s.chunks[file] = questions
	return questions, nil
}

func validChunkName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.Contains(name, "..") &&
		strings.HasSuffix(name, ".enc")
}

type dirLoader struct {
	dir string
}

func (d dirLoader) load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errChunkNotFound, name)
	}
	return data, err
}

type httpLoader struct {
	baseURL    string
	httpClient *http.Client
}

const maxChunkBytes = 16 << 20

func (h httpLoader) load(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/"+name, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", errChunkNotFound, name)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: %s", name, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxChunkBytes))
}
