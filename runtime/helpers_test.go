package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/justapithecus/objext/store"
	"github.com/justapithecus/objext/types"
)

func globalMuon(px, py, pz float64, charge int) types.PhysicsObject {
	return types.PhysicsObject{
		Energy:      px + py + pz + 1,
		Px:          px,
		Py:          py,
		Pz:          pz,
		Charge:      charge,
		IsGlobal:    true,
		GlobalTrack: &types.Track{Pt: px, Eta: 0.5, Phi: 1.5},
	}
}

func electron(px, py, pz float64, charge int) types.PhysicsObject {
	return types.PhysicsObject{Energy: 10, Px: px, Py: py, Pz: pz, Charge: charge}
}

func muonEvent(num uint64, objs ...types.PhysicsObject) *types.Event {
	return &types.Event{
		Run:   1,
		Lumi:  1,
		Event: num,
		Collections: map[string]types.Collection{
			"muons": {Kind: types.KindMuon, Objects: objs},
		},
	}
}

func electronEvent(num uint64, objs ...types.PhysicsObject) *types.Event {
	return &types.Event{
		Run:   1,
		Lumi:  1,
		Event: num,
		Collections: map[string]types.Collection{
			"electrons": {Kind: types.KindElectron, Objects: objs},
		},
	}
}

// encodeStore writes events in the binary store format.
func encodeStore(t *testing.T, events ...*types.Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := store.NewWriter(&buf)
	if err := w.WriteHeader("runtime-test"); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	for _, ev := range events {
		if err := w.WriteEvent(ev); err != nil {
			t.Fatalf("WriteEvent failed: %v", err)
		}
	}
	return buf.Bytes()
}

// memOpener serves inputs from memory and records the open order.
type memOpener struct {
	files  map[string][]byte
	opened []string
}

func (o *memOpener) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	o.opened = append(o.opened, uri)
	data, ok := o.files[uri]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", uri)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
