package store

import (
	"bufio"
	"fmt"
	"io"

	"github.com/justapithecus/objext/types"
)

// Reader yields events from a store stream in file order.
// Any error other than io.EOF ends the stream; there is no resynchronization.
type Reader struct {
	dec    *FrameDecoder
	header *Header
	frames int64
	err    error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: NewFrameDecoder(bufio.NewReader(r))}
}

// Header returns the store header if one has been read.
func (r *Reader) Header() *Header {
	return r.header
}

// Frames returns the number of frames consumed so far.
func (r *Reader) Frames() int64 {
	return r.frames
}

// Next returns the next event. It returns io.EOF when the stream ends cleanly.
func (r *Reader) Next() (*types.Event, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		payload, err := r.dec.ReadFrame()
		if err != nil {
			r.err = err
			return nil, err
		}
		r.frames++

		frame, err := DecodeFrame(payload)
		if err != nil {
			r.err = err
			return nil, err
		}

		switch f := frame.(type) {
		case *Header:
			if r.frames != 1 {
				r.err = &FrameError{Kind: FrameErrorDecode, Msg: fmt.Sprintf("store header at frame %d", r.frames)}
				return nil, r.err
			}
			if f.FormatVersion > types.StoreFormatVersion {
				r.err = &FrameError{
					Kind: FrameErrorDecode,
					Msg:  fmt.Sprintf("unsupported store format version %d (max %d)", f.FormatVersion, types.StoreFormatVersion),
				}
				return nil, r.err
			}
			r.header = f
		case *types.Event:
			return f, nil
		}
	}
}
