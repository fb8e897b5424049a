package store

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/justapithecus/objext/types"
)

func sampleEvents() []*types.Event {
	return []*types.Event{
		{
			Run: 1, Lumi: 1, Event: 100,
			Collections: map[string]types.Collection{
				"muons": {Kind: types.KindMuon, Objects: []types.PhysicsObject{
					{Energy: 20, Px: 10, Py: 5, Pz: 15, Charge: -1, IsGlobal: true,
						GlobalTrack: &types.Track{Pt: 11.1, Eta: 1.2, Phi: 0.46}},
					{Energy: 8, Px: 1, Py: 2, Pz: 7, Charge: 1},
				}},
			},
		},
		{
			Run: 1, Lumi: 2, Event: 101,
			Collections: map[string]types.Collection{
				"muons": {Kind: types.KindMuon},
			},
		},
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteHeader("test"); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	for _, ev := range sampleEvents() {
		if err := w.WriteEvent(ev); err != nil {
			t.Fatalf("WriteEvent failed: %v", err)
		}
	}
	if w.Events() != 2 {
		t.Errorf("Events() = %d, want 2", w.Events())
	}

	r := NewReader(&buf)
	var got []*types.Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("read %d events, want 2", len(got))
	}
	if r.Header() == nil || r.Header().Producer != "test" {
		t.Errorf("Header() = %+v, want producer test", r.Header())
	}
	if r.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", r.Frames())
	}

	first := got[0]
	if first.Event != 100 || first.Lumi != 1 {
		t.Errorf("first event = %d/%d, want 100/1", first.Event, first.Lumi)
	}
	muons := first.Collections["muons"]
	if muons.Kind != types.KindMuon || len(muons.Objects) != 2 {
		t.Fatalf("muons = %+v, want 2 muon objects", muons)
	}
	if muons.Objects[0].GlobalTrack == nil || muons.Objects[0].GlobalTrack.Pt != 11.1 {
		t.Errorf("global track = %+v, want pt 11.1", muons.Objects[0].GlobalTrack)
	}
	if muons.Objects[1].GlobalTrack != nil || muons.Objects[1].Charge != 1 {
		t.Errorf("second muon = %+v, want charge 1 and no global track", muons.Objects[1])
	}
	if len(got[1].Collections["muons"].Objects) != 0 {
		t.Errorf("second event muons = %d, want 0", len(got[1].Collections["muons"].Objects))
	}
}

func TestReader_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteEvent(sampleEvents()[0]); err != nil {
		t.Fatalf("WriteEvent failed: %v", err)
	}

	r := NewReader(&buf)
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Event != 100 {
		t.Errorf("Event = %d, want 100", ev.Event)
	}
	if r.Header() != nil {
		t.Errorf("Header() = %+v, want nil", r.Header())
	}
}

func TestWriter_HeaderAfterEvents(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteEvent(sampleEvents()[0])
	if err := w.WriteHeader("late"); err == nil {
		t.Error("WriteHeader after events = nil, want error")
	}
}

func TestReader_TruncatedStreamIsSticky(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, ev := range sampleEvents() {
		_ = w.WriteEvent(ev)
	}
	data := buf.Bytes()[:buf.Len()-2]

	r := NewReader(bytes.NewReader(data))
	if _, err := r.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	_, err := r.Next()
	if !IsFatalFrameError(err) {
		t.Fatalf("second Next = %v, want fatal frame error", err)
	}
	_, again := r.Next()
	if !errors.Is(again, err) {
		t.Errorf("Next after failure = %v, want the same error", again)
	}
}

func TestReader_UnsupportedFormatVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeRaw(t, &Header{Type: HeaderType, FormatVersion: types.StoreFormatVersion + 1}))

	_, err := NewReader(&buf).Next()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) || frameErr.Kind != FrameErrorDecode {
		t.Errorf("Next = %v, want decode FrameError", err)
	}
}

func TestReader_HeaderNotFirst(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteEvent(sampleEvents()[0])
	buf.Write(encodeRaw(t, &Header{Type: HeaderType, FormatVersion: 1}))

	r := NewReader(&buf)
	if _, err := r.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if _, err := r.Next(); err == nil {
		t.Error("Next over misplaced header = nil, want error")
	}
}
