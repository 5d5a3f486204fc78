// Package mocks provides test doubles for the application ports.
package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
)

// -- LLM Mock --

type MockLLM struct {
	mock.Mock
}

var _ output.LLMPort = (*MockLLM)(nil)

func (m *MockLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*output.ChatResponse)
	return resp, args.Error(1)
}

// Reply is a convenience for stubbing a successful completion.
func Reply(content string) *output.ChatResponse {
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: content}}
}

// -- Policy Mock --

type MockPolicy struct {
	mock.Mock
}

var _ output.DecisionPolicy = (*MockPolicy)(nil)

func (m *MockPolicy) Decide(ctx context.Context, bug string, obs entity.Observation, history entity.HistoryView) entity.PolicyResponse {
	args := m.Called(ctx, bug, obs, history)
	return args.Get(0).(entity.PolicyResponse)
}

// -- Logger --

// NopLogger discards everything.
type NopLogger struct{}

var _ output.LoggerPort = NopLogger{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (l NopLogger) WithField(string, any) output.LoggerPort { return l }
func (l NopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (NopLogger) Close() error { return nil }

// -- Artifact Store --

// MemoryStore keeps artifacts in memory.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	FailOn  map[string]error
}

var _ output.ArtifactStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, FailOn: map[string]error{}}
}

func (s *MemoryStore) Upload(_ context.Context, key string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailOn[key]; err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *MemoryStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *MemoryStore) GetURL(_ context.Context, key string) (string, error) {
	return "mem://" + key, nil
}

func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}
