package lode

import (
	"context"
	"errors"
	"io"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/objext/types"
)

// FailingStore is a lode.Store that returns configurable errors.
type FailingStore struct {
	PutErr    error
	GetErr    error
	ExistsErr error
	ListErr   error
	DeleteErr error

	PutCalls int
	PutPaths []string
}

func (s *FailingStore) Put(_ context.Context, path string, _ io.Reader) error {
	s.PutCalls++
	s.PutPaths = append(s.PutPaths, path)
	return s.PutErr
}

func (s *FailingStore) Get(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, s.GetErr
}

func (s *FailingStore) Exists(_ context.Context, _ string) (bool, error) {
	return false, s.ExistsErr
}

func (s *FailingStore) List(_ context.Context, _ string) ([]string, error) {
	return nil, s.ListErr
}

func (s *FailingStore) Delete(_ context.Context, _ string) error {
	return s.DeleteErr
}

func (s *FailingStore) ReadRange(_ context.Context, _ string, _, _ int64) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *FailingStore) ReaderAt(_ context.Context, _ string) (io.ReaderAt, error) {
	return nil, errors.New("not implemented")
}

var _ lode.Store = (*FailingStore)(nil)

// sharedFactory returns a StoreFactory that always returns the given store.
// This allows write and read datasets to share the same in-memory state.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

// failingFactory creates a factory that fails to create a store.
func failingFactory(err error) lode.StoreFactory {
	return func() (lode.Store, error) {
		return nil, err
	}
}

func testConfig(jobID string) Config {
	return Config{
		Dataset:    "objext",
		Analyzer:   "electron",
		Collection: "electrons",
		Day:        "2026-10-16",
		JobID:      jobID,
	}
}

func testSchema() types.Schema {
	return types.NewSchema("electron",
		types.Field{Name: "pt", Kind: types.ValueFloat},
		types.Field{Name: "ch", Kind: types.ValueInt},
	)
}

func testRecord(event uint64, index int, pt float64, ch int64) types.AttributeRecord {
	return types.AttributeRecord{
		Run:   1,
		Event: event,
		Index: index,
		Values: []types.Value{
			types.Int(1),
			types.Int(int64(event)),
			types.Int(int64(index)),
			types.Float(pt),
			types.Int(ch),
		},
	}
}

// toInt64 converts a value to int64 for test assertions on raw map fields.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}
