// Package generate drafts new quiz questions from study material with a
// large language model.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"civic-apps/internal/quiz"
)

const (
	DefaultModel     = "gemini-2.5-flash"
	DefaultChunkSize = 20000
	DefaultBatchSize = 20
	DefaultTarget    = 120
	DefaultStartID   = 1000
	DefaultPause     = 3 * time.Second
)

// Completer sends a prompt to a model and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type Config struct {
	ChunkSize int
	BatchSize int
	// Target is how many new questions to produce.
	Target int
	Pause  time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Target <= 0 {
		c.Target = DefaultTarget
	}
	if c.Pause < 0 {
		c.Pause = 0
	}
	return c
}

type Generator struct {
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

func New(completer Completer, cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: completer, cfg: cfg.withDefaults(), logger: logger}
}

// Generate walks the text one chunk at a time, asking for a batch of
// questions per chunk until the target is met or the text runs out. IDs
// are assigned from startID upward. onBatch, when set, sees every accepted
// batch so callers can save progress.
func (g *Generator) Generate(ctx context.Context, text string, startID int, onBatch func([]quiz.Question) error) ([]quiz.Question, error) {
	chunks := SplitText(text, g.cfg.ChunkSize)
	if len(chunks) == 0 {
		return nil, errors.New("source text is empty")
	}

	nextID := startID
	generated := make([]quiz.Question, 0, g.cfg.Target)
	for i, chunk := range chunks {
		if len(generated) >= g.cfg.Target {
			break
		}
		if i > 0 && g.cfg.Pause > 0 {
			select {
			case <-ctx.Done():
				return generated, ctx.Err()
			case <-time.After(g.cfg.Pause):
			}
		}

		size := min(g.cfg.BatchSize, g.cfg.Target-len(generated))
		raw, err := g.completer.Complete(ctx, BuildPrompt(chunk, nextID, size))
		if err != nil {
			if ctx.Err() != nil {
				return generated, ctx.Err()
			}
			g.logger.Warn("generation batch failed", zap.Int("chunk", i), zap.Error(err))
			continue
		}

		batch, rejected, err := ParseBatch(raw, nextID)
		if err != nil {
			g.logger.Warn("unparseable generation batch", zap.Int("chunk", i), zap.Error(err))
			continue
		}
		if len(batch) > size {
			batch = batch[:size]
		}
		if rejected > 0 {
			g.logger.Info("dropped invalid questions", zap.Int("chunk", i), zap.Int("rejected", rejected))
		}
		if len(batch) == 0 {
			continue
		}

		generated = append(generated, batch...)
		nextID += len(batch)
		g.logger.Info("generated questions", zap.Int("batch", len(batch)), zap.Int("total", len(generated)))

		if onBatch != nil {
			if err := onBatch(batch); err != nil {
				return generated, err
			}
		}
	}
	return generated, nil
}

// NextID is one past the highest existing ID, or DefaultStartID for an
// empty bank.
func NextID(existing []quiz.Question) int {
	maxID := 0
	for _, question := range existing {
		maxID = max(maxID, question.ID)
	}
	if maxID == 0 {
		return DefaultStartID
	}
	return maxID + 1
}

// SplitText cuts text into pieces of at most size runes.
func SplitText(text string, size int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func BuildPrompt(chunk string, startID, batchSize int) string {
	return fmt.Sprintf(`You are an expert at creating 'Life in the UK' test questions.
Based on the following excerpt from the official study materials, generate exactly %d unique, accurate multiple-choice questions.

The questions should be formatted as a JSON array of objects.
Each object must have the following keys strictly:
- "id": an integer starting from %d
- "topic": a string naming the topic (e.g. "Values and Principles", "What is the UK?", "History", "Modern Society", "Government & Law")
- "question": the question string
- "options": an array of exactly 4 string options
- "correctAnswer": the correct option string (must match exactly one of the options)
- "explanation": a brief string explaining why the answer is correct

Source Material Excerpt:
%s

Return ONLY valid JSON. Output must start with [ and end with ]. Do not include Markdown blocks.`, batchSize, startID, chunk)
}

// ParseBatch decodes a model answer, tolerating a surrounding markdown
// fence. Questions are renumbered from startID; invalid ones are dropped
// and counted.
func ParseBatch(raw string, startID int) ([]quiz.Question, int, error) {
	text := stripFence(raw)

	var questions []quiz.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, 0, fmt.Errorf("decode batch: %w", err)
	}

	valid := make([]quiz.Question, 0, len(questions))
	rejected := 0
	for _, question := range questions {
		question.ID = startID + len(valid)
		question.Topic = strings.TrimSpace(question.Topic)
		if err := question.Validate(); err != nil {
			rejected++
			continue
		}
		valid = append(valid, question)
	}
	return valid, rejected, nil
}

func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
