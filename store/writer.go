package store

import (
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/objext/types"
)

// Writer produces store frames.
type Writer struct {
	w      io.Writer
	events int64
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the store header. Must be called before any event.
func (w *Writer) WriteHeader(producer string) error {
	if w.events > 0 {
		return fmt.Errorf("store header after %d events", w.events)
	}
	return w.write(&Header{
		Type:          HeaderType,
		FormatVersion: types.StoreFormatVersion,
		Producer:      producer,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteEvent writes one event frame.
func (w *Writer) WriteEvent(ev *types.Event) error {
	if err := w.write(&eventFrame{Type: EventType, Event: *ev}); err != nil {
		return err
	}
	w.events++
	return nil
}

// Events returns the number of events written.
func (w *Writer) Events() int64 {
	return w.events
}

func (w *Writer) write(v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
