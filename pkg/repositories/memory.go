package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/scoreboard/pkg/match"
)

// InMemoryRepository keeps the exact JSON of every record and of the index,
// the same bytes a SQL repository would store before compression.
type InMemoryRepository struct {
	lock    sync.RWMutex
	records map[string][]byte
	index   []byte
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string][]byte),
		index:   []byte("[]"),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveMatch(ctx context.Context, doc *match.Document) error {
	if doc == nil {
		return fmt.Errorf("match document is nil")
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.records[doc.ID] = data
	return nil
}

func (r *InMemoryRepository) LoadMatch(ctx context.Context, id string) (*match.Document, error) {
	r.lock.RLock()
	data, ok := r.records[id]
	r.lock.RUnlock()
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	return match.Parse(data)
}

func (r *InMemoryRepository) DeleteMatch(ctx context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.records, id)

	index := match.ParseIndex(r.index)
	kept := index[:0]
	for _, s := range index {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return r.storeIndex(kept)
}

func (r *InMemoryRepository) PutSummary(ctx context.Context, summary match.Summary) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	index := match.ParseIndex(r.index)
	replaced := false
	for i := range index {
		if index[i].ID == summary.ID {
			index[i] = summary
			replaced = true
			break
		}
	}
	if !replaced {
		index = append(index, summary)
	}
	return r.storeIndex(index)
}

func (r *InMemoryRepository) ListSummaries(ctx context.Context) ([]match.Summary, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return match.ParseIndex(r.index), nil
}

// SetRaw stores data as the record for id without validating it. It is used to
// seed records written by other tools.
func (r *InMemoryRepository) SetRaw(id string, data []byte) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.records[id] = append([]byte(nil), data...)
}

// Raw returns the stored bytes of a record.
func (r *InMemoryRepository) Raw(id string) ([]byte, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	data, ok := r.records[id]
	return append([]byte(nil), data...), ok
}

func (r *InMemoryRepository) storeIndex(index []match.Summary) error {
	data, err := match.MarshalIndex(index)
	if err != nil {
		return err
	}
	r.index = data
	return nil
}
