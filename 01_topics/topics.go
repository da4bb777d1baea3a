package topics

import (
	"strings"
	"sync"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source hands out topics in priority order, each exactly once.
// The list lives for the whole process; nothing refills it.
type Source struct {
	mu      sync.Mutex
	pending []types.Topic
	total   int
	logger  zerolog.Logger
}

// New creates a Source from the configured topic list
func New(cfg *config.Config) *Source {
	s := &Source{logger: log.With().Str("stage", "topics").Logger()}
	for _, t := range cfg.Topics.List {
		s.add(t)
	}
	return s
}

// Append adds topics after the ones already queued, skipping blanks
func (s *Source) Append(topics ...types.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		s.add(string(t))
	}
}

func (s *Source) add(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	s.pending = append(s.pending, types.Topic(t))
	s.total++
}

// Next removes and returns the head of the list
func (s *Source) Next() (types.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return "", types.Errorf(types.KindExhausted, "next topic", "all %d topics used", s.total)
	}
	topic := s.pending[0]
	s.pending = s.pending[1:]
	s.logger.Info().Str("topic", string(topic)).Int("remaining", len(s.pending)).Msg("topic selected")
	return topic, nil
}

// Remaining reports how many topics are still queued
func (s *Source) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
