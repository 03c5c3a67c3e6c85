package chunks

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-apps/internal/quiz"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func bank() []quiz.Question {
	var questions []quiz.Question
	topics := []string{"History & Tradition", "Government", "Everyday Life"}
	id := 1
	for _, topic := range topics {
		for i := 0; i < 12; i++ {
			questions = append(questions, quiz.Question{
				ID:            id,
				Topic:         topic,
				Question:      fmt.Sprintf("%s %d", topic, i),
				Options:       []string{"a", "b", "c", "d"},
				CorrectAnswer: "c",
			})
			id++
		}
	}
	return questions
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	payload, err := Encrypt(testKey, []byte(`[{"id":1}]`))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Len(t, raw, NonceSize+len(`[{"id":1}]`)+16)

	plain, err := Decrypt(testKey, payload)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(plain))

	other, err := Encrypt(testKey, []byte(`[{"id":1}]`))
	require.NoError(t, err)
	assert.NotEqual(t, payload, other, "nonce must differ per payload")
}

func TestDecryptFailures(t *testing.T) {
	payload, err := Encrypt(testKey, []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt([]byte("ffffffffffffffffffffffffffffffff"), payload)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Decrypt(testKey, "not base64!")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Decrypt(testKey, base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Decrypt([]byte("short"), payload)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
	assert.Equal(t, byte(0xab), key[0])

	key, err = ParseKey(" linuk-secret-key-123456789012345 ")
	require.NoError(t, err)
	assert.Equal(t, "linuk-secret-key-123456789012345", string(key))

	encoded := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x5c}, KeySize))
	key, err = ParseKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x5c}, KeySize), key)

	_, err = ParseKey("too short")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "history__tradition", safeName("History & Tradition"))
	assert.Equal(t, "everyday_life", safeName(" Everyday Life! "))
	assert.Equal(t, "topic_government.enc", topicFile("Government"))
}

func TestBuildWritesChunkSet(t *testing.T) {
	dir := t.TempDir()
	index, err := Build(dir, bank(), testKey, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.Len(t, index.Topics, 3)
	assert.Equal(t, quiz.TopicInfo{Name: "History & Tradition", File: "topic_history__tradition.enc", Count: 12}, index.Topics[0])
	require.Len(t, index.Tests, 3)
	assert.Equal(t, quiz.TestInfo{ID: "1", File: "test_1.enc"}, index.Tests[0])

	onDisk, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, index, onDisk)

	raw, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"topics\"")
	assert.Contains(t, string(raw), "\"id\": 1")

	payload, err := os.ReadFile(filepath.Join(dir, ChunkDir, "test_2.enc"))
	require.NoError(t, err)
	questions, err := DecryptQuestions(testKey, string(payload))
	require.NoError(t, err)
	assert.Len(t, questions, quiz.MockTestSize)
	for _, question := range questions {
		assert.NoError(t, question.Validate())
	}
}

func TestBuildRejectsEmptyBank(t *testing.T) {
	_, err := Build(t.TempDir(), nil, testKey, 1, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)
}

func TestBuildTestsKeepsTopics(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(2))
	_, err := Build(dir, bank(), testKey, 2, rng)
	require.NoError(t, err)

	index, err := BuildTests(dir, bank(), testKey, 5, rng)
	require.NoError(t, err)
	assert.Len(t, index.Topics, 3)
	assert.Len(t, index.Tests, 5)

	_, err = os.Stat(filepath.Join(dir, ChunkDir, "test_5.enc"))
	assert.NoError(t, err)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(dir, bank(), testKey, 4, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	source := NewDirSource(dir, testKey, rand.New(rand.NewSource(4)), nil)
	ctx := context.Background()

	index, err := source.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, index.Topics, 3)

	questions, err := source.TopicQuestions(ctx, "government", quiz.TopicPracticeSize)
	require.NoError(t, err)
	assert.Len(t, questions, quiz.TopicPracticeSize)
	for _, question := range questions {
		assert.Equal(t, "Government", question.Topic)
	}

	test, err := source.TestQuestions(ctx, quiz.MockTestSize)
	require.NoError(t, err)
	assert.Len(t, test, quiz.MockTestSize)

	_, err = source.TopicQuestions(ctx, "Sport", 10)
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)

	// Cached chunks survive the files going away until Reset.
	require.NoError(t, os.Remove(filepath.Join(dir, ChunkDir, "topic_government.enc")))
	_, err = source.TopicQuestions(ctx, "Government", 5)
	assert.NoError(t, err)

	source.Reset()
	_, err = source.TopicQuestions(ctx, "Government", 5)
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)
}

func TestDirSourceWrongKey(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(dir, bank(), testKey, 1, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	source := NewDirSource(dir, []byte("ffffffffffffffffffffffffffffffff"), nil, nil)
	_, err = source.TestQuestions(context.Background(), 24)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestHTTPSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(dir, bank(), testKey, 2, rand.New(rand.NewSource(6)))
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		requests []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.URL.Path)
		mu.Unlock()
		http.StripPrefix("/db", http.FileServer(http.Dir(dir))).ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	source := NewHTTPSource(server.URL+"/db/", testKey, server.Client(), rand.New(rand.NewSource(7)), nil)
	ctx := context.Background()

	_, err = source.TopicQuestions(ctx, "Everyday Life", 3)
	require.NoError(t, err)
	_, err = source.TopicQuestions(ctx, "Everyday Life", 3)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/db/index.json", "/db/chunks/topic_everyday_life.enc"}, requests)
}
