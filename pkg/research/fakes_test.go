package research

import (
	"context"
	"errors"

	"github.com/mikeboe/research-assistant/pkg/search"
)

// fakeProvider returns one configured batch of results per call,
// repeating the last batch once exhausted.
type fakeProvider struct {
	rounds [][]search.Result
	err    error
	calls  int
	seen   []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(ctx context.Context, query string) ([]search.Result, error) {
	p.seen = append(p.seen, query)
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if len(p.rounds) == 0 {
		return nil, nil
	}
	i := p.calls - 1
	if i >= len(p.rounds) {
		i = len(p.rounds) - 1
	}
	return p.rounds[i], nil
}

type fakeModel struct {
	response string
	err      error
	calls    int
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type fakeCache struct {
	similar    []Finding
	similarErr error
	addErr     error
	added      []Finding
	addedQuery string
}

func (c *fakeCache) Similar(ctx context.Context, query string, limit int) ([]Finding, error) {
	if c.similarErr != nil {
		return nil, c.similarErr
	}
	return c.similar, nil
}

func (c *fakeCache) Add(ctx context.Context, query string, findings []Finding) error {
	if c.addErr != nil {
		return c.addErr
	}
	c.addedQuery = query
	c.added = append(c.added, findings...)
	return nil
}

var errBoom = errors.New("boom")
