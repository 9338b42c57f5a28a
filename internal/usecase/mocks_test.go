package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/smartshop/backend/internal/domain"
)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string]interface{}
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) value(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// MockLinkChecker answers from a fixed table of URL -> status
type MockLinkChecker struct {
	mu    sync.Mutex
	live  map[string]bool
	err   error
	calls map[string]int
	// cancelled counts calls that arrived with a done context
	cancelled int
}

func NewMockLinkChecker(live ...string) *MockLinkChecker {
	m := &MockLinkChecker{live: make(map[string]bool), calls: make(map[string]int)}
	for _, u := range live {
		m.live[u] = true
	}
	return m
}

func (m *MockLinkChecker) Check(ctx context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[url]++
	if ctx.Err() != nil {
		m.cancelled++
	}
	if m.err != nil {
		return false, m.err
	}
	return m.live[url], nil
}

func (m *MockLinkChecker) callCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

// MockPageRenderer returns canned HTML per URL and fails for anything else
type MockPageRenderer struct {
	mu       sync.Mutex
	pages    map[string]string
	err      error
	calls    int
	timeouts []time.Duration
	delay    time.Duration
}

func NewMockPageRenderer() *MockPageRenderer {
	return &MockPageRenderer{pages: make(map[string]string)}
}

func (m *MockPageRenderer) Render(ctx context.Context, url string, timeout time.Duration) (*domain.PageSnapshot, error) {
	m.mu.Lock()
	m.calls++
	m.timeouts = append(m.timeouts, timeout)
	html, ok := m.pages[url]
	err, delay := m.err, m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRenderFailure
	}
	return &domain.PageSnapshot{URL: url, HTML: html}, nil
}

func (m *MockPageRenderer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockGenerator replays responses in order and records every request
type MockGenerator struct {
	mu        sync.Mutex
	responses []string
	citations []domain.Citation
	err       error
	requests  []domain.GenerationRequest
}

func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{responses: responses}
}

func (m *MockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &domain.GenerationResult{}, nil
	}
	text := m.responses[0]
	m.responses = m.responses[1:]
	return &domain.GenerationResult{Text: text, Citations: m.citations}, nil
}
