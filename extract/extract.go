// Package extract maps physics objects to fixed-schema attribute records.
//
// Extractors are pure: the same event, index and object always produce the
// same record. Extraction is total; values that cannot be computed (NaN,
// sentinels) pass through unchanged.
package extract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/justapithecus/objext/types"
)

// Extractor projects one object kind into records of a fixed schema.
type Extractor interface {
	// Name is the analyzer name used in configuration.
	Name() string
	// Kind is the object kind the extractor accepts.
	Kind() types.ObjectKind
	// Schema is the ordered field list of every produced record.
	Schema() types.Schema
	// Extract maps the object at position index of the event's collection.
	Extract(ev *types.Event, index int, obj types.PhysicsObject) types.AttributeRecord
}

// Selector is implemented by extractors that keep only a subset of the
// resolved objects. Selection runs before limiting.
type Selector interface {
	Select(objs []types.PhysicsObject) []types.PhysicsObject
}

// ErrUnknownAnalyzer is returned by Lookup for unregistered names.
var ErrUnknownAnalyzer = errors.New("unknown analyzer")

var registry = map[string]Extractor{}

func register(e Extractor) {
	registry[e.Name()] = e
}

func init() {
	register(Electron{})
	register(Muon{})
	register(GlobalMuon{})
}

// Lookup returns the extractor registered under name.
func Lookup(name string) (Extractor, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownAnalyzer, name, Names())
	}
	return e, nil
}

// Names returns the registered analyzer names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run applies e to every object, selecting first when e is a Selector.
// Indices are positions in the selected sequence.
func Run(e Extractor, ev *types.Event, objs []types.PhysicsObject) []types.AttributeRecord {
	if s, ok := e.(Selector); ok {
		objs = s.Select(objs)
	}
	if len(objs) == 0 {
		return nil
	}
	records := make([]types.AttributeRecord, len(objs))
	for i, obj := range objs {
		records[i] = e.Extract(ev, i, obj)
	}
	return records
}

func newRecord(ev *types.Event, index int, attrs ...types.Value) types.AttributeRecord {
	values := make([]types.Value, 0, types.KeyFields+len(attrs))
	values = append(values,
		types.Int(int64(ev.Run)),
		types.Int(int64(ev.Event)),
		types.Int(int64(index)),
	)
	values = append(values, attrs...)
	return types.AttributeRecord{
		Run:    ev.Run,
		Event:  ev.Event,
		Index:  index,
		Values: values,
	}
}

func floatField(name string) types.Field {
	return types.Field{Name: name, Kind: types.ValueFloat}
}
