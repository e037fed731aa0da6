package crawler

import (
	"context"
	"fmt"
	"path"
	"sync"
)

// mockElement serves sub-field lookups from a map keyed by selector
type mockElement struct {
	texts map[string]string
	attrs map[string]string

	mu      sync.Mutex
	lookups int
}

func newMockArticleElement(title, description, timestamp, image string) *mockElement {
	sel := DefaultSelectors()
	return &mockElement{
		texts: map[string]string{
			sel.Title:       title,
			sel.Description: description,
			sel.Timestamp:   timestamp,
		},
		attrs: map[string]string{
			sel.Image + "@" + sel.ImageAttr: image,
		},
	}
}

func (m *mockElement) Text(ctx context.Context, selector string) (string, error) {
	m.mu.Lock()
	m.lookups++
	m.mu.Unlock()
	text, ok := m.texts[selector]
	if !ok {
		return "", fmt.Errorf("no element matches %s", selector)
	}
	return text, nil
}

func (m *mockElement) Attr(ctx context.Context, selector, name string) (string, error) {
	m.mu.Lock()
	m.lookups++
	m.mu.Unlock()
	value, ok := m.attrs[selector+"@"+name]
	if !ok {
		return "", fmt.Errorf("no attribute %s on %s", name, selector)
	}
	return value, nil
}

func (m *mockElement) touched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups > 0
}

// mockView serves fixed pages of elements
type mockView struct {
	pages    [][]Element
	current  int
	phrase   string
	opened   bool
	clicks   int
	closed   bool
	openErr  error
	pageErr  error
	clickErr error
}

func (m *mockView) OpenSearch(ctx context.Context, phrase string) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	m.phrase = phrase
	return nil
}

func (m *mockView) CurrentPageElements(ctx context.Context) ([]Element, error) {
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	if m.current >= len(m.pages) {
		return nil, nil
	}
	return m.pages[m.current], nil
}

func (m *mockView) ClickNext(ctx context.Context) (bool, error) {
	if m.clickErr != nil {
		return false, m.clickErr
	}
	if m.current+1 >= len(m.pages) {
		return false, nil
	}
	m.clicks++
	m.current++
	return true, nil
}

func (m *mockView) Close() error {
	m.closed = true
	return nil
}

// mockImages records fetched URLs and returns a path per URL
type mockImages struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]bool
}

func (m *mockImages) Fetch(ctx context.Context, imageURL string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, imageURL)
	if m.fail[imageURL] {
		return ""
	}
	return "output/" + path.Base(imageURL)
}
