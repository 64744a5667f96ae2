package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Gateway. It keeps insertion order, so selects
// without an order are stable, and lets tests inject failures per operation.
type Memory struct {
	mu       sync.Mutex
	rows     map[string][]Record
	failures map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		rows:     map[string][]Record{},
		failures: map[string]error{},
	}
}

// FailOn makes every op ("select", "insert", "upsert", "update", "delete") on
// collection return err. A nil err clears the failure.
func (m *Memory) FailOn(op, collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + "/" + collection
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Len reports how many rows collection holds.
func (m *Memory) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[collection])
}

func (m *Memory) fail(op, collection string) error {
	if err := checkCollection(collection); err != nil {
		return wrap(op, collection, err)
	}
	if err, ok := m.failures[op+"/"+collection]; ok {
		return wrap(op, collection, err)
	}
	return nil
}

func (m *Memory) Select(ctx context.Context, collection string, filter Filter, order ...Order) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("select", collection); err != nil {
		return nil, err
	}
	if err := filter.check(); err != nil {
		return nil, wrap("select", collection, err)
	}

	out := []Record{}
	for _, rec := range m.rows[collection] {
		if filter.Match(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range order {
			c := compare(out[i][o.Field], out[j][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("insert", collection); err != nil {
		return err
	}
	id, ok := rec["id"]
	if !ok || id == nil {
		return wrap("insert", collection, ErrMissingID)
	}
	if m.indexOf(collection, id) >= 0 {
		return wrap("insert", collection, ErrDuplicate)
	}
	m.rows[collection] = append(m.rows[collection], rec.Clone())
	return nil
}

func (m *Memory) Upsert(ctx context.Context, collection string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("upsert", collection); err != nil {
		return nil, err
	}
	id, ok := rec["id"]
	if !ok || id == nil {
		return nil, wrap("upsert", collection, ErrMissingID)
	}

	i := m.indexOf(collection, id)
	if i < 0 {
		m.rows[collection] = append(m.rows[collection], rec.Clone())
		return rec.Clone(), nil
	}
	stored := m.rows[collection][i]
	for k, v := range rec {
		stored[k] = v
	}
	return stored.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, collection string, filter Filter, patch Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("update", collection); err != nil {
		return 0, err
	}
	if len(filter) == 0 {
		return 0, wrap("update", collection, ErrNoFilter)
	}

	var n int64
	for _, rec := range m.rows[collection] {
		if !filter.Match(rec) {
			continue
		}
		for k, v := range patch {
			rec[k] = v
		}
		n++
	}
	return n, nil
}

func (m *Memory) Delete(ctx context.Context, collection string, filter Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("delete", collection); err != nil {
		return err
	}
	if len(filter) == 0 {
		return wrap("delete", collection, ErrNoFilter)
	}

	kept := m.rows[collection][:0]
	for _, rec := range m.rows[collection] {
		if !filter.Match(rec) {
			kept = append(kept, rec)
		}
	}
	m.rows[collection] = kept
	return nil
}

func (m *Memory) indexOf(collection string, id any) int {
	for i, rec := range m.rows[collection] {
		if equal(rec["id"], id) {
			return i
		}
	}
	return -1
}
