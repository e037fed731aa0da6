package workitems

import (
	"context"
	"os"
	"sync"

	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// fileEntry is one entry of a work items file
type fileEntry struct {
	ID      string  `yaml:"id"`
	Payload Payload `yaml:"payload"`
}

// Outcome is the recorded result of a file work item
type Outcome struct {
	Item  Item
	Error string
}

// FileSource serves work items listed in a YAML or JSON file
type FileSource struct {
	path  string
	items []Item
	next  int

	mu       sync.Mutex
	outcomes []Outcome
	log      *logger.Logger
}

// NewFileSource reads all work items from path
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewQueue("file", "failed to read "+path, err)
	}

	var entries []fileEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewQueue("file", "failed to parse "+path, err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.New().String()
		}
		items = append(items, Item{
			ID:        id,
			LimitDate: entry.Payload.LimitDate,
			Phrase:    entry.Payload.Phrase,
		})
	}

	log := logger.ForQueue()
	log.Info().Str("file", path).Int("items", len(items)).Msg("Work items loaded")

	return &FileSource{path: path, items: items, log: log}, nil
}

// Next returns the next item in file order
func (s *FileSource) Next(ctx context.Context) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.items) {
		return Item{}, ErrNoMoreItems
	}
	item := s.items[s.next]
	s.next++
	return item, nil
}

// Complete records a finished item
func (s *FileSource) Complete(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, Outcome{Item: item})
	s.log.Debug().Str("item", item.ID).Msg("Work item completed")
	return nil
}

// Fail records a failed item
func (s *FileSource) Fail(ctx context.Context, item Item, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, Outcome{Item: item, Error: err.Error()})
	s.log.Debug().Str("item", item.ID).Err(err).Msg("Work item failed")
	return nil
}

// Outcomes returns the recorded results in completion order
func (s *FileSource) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Outcome(nil), s.outcomes...)
}

// Close does nothing for files
func (s *FileSource) Close() error {
	return nil
}
