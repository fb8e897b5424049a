package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/justapithecus/objext/policy"
	"github.com/justapithecus/objext/types"
)

// widePad fills unused numeric slots in the wide layout. String slots
// repeat the event's label instead.
const widePad = "0.0"

// CSVSink writes records to a CSV file.
type CSVSink struct {
	path   string
	schema types.Schema
	layout string
	slots  int

	file   *os.File
	w      *csv.Writer
	row    []string
	closed bool
}

// OpenCSV creates or truncates path and writes the header row.
// layout is LayoutLong (or empty) or LayoutWide; the wide layout uses
// maxObjects slots per row, DefaultWideMaxObjects when maxObjects <= 0.
func OpenCSV(path string, schema types.Schema, layout string, maxObjects int) (*CSVSink, error) {
	s := &CSVSink{path: path, schema: schema, layout: layout}
	switch layout {
	case LayoutLong, "":
		s.layout = LayoutLong
	case LayoutWide:
		s.slots = maxObjects
		if s.slots <= 0 {
			s.slots = DefaultWideMaxObjects
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, newIOError("open", path, err)
	}
	s.file = f
	s.w = csv.NewWriter(f)

	if err := s.w.Write(s.header()); err != nil {
		_ = f.Close()
		return nil, newIOError("write", path, err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = f.Close()
		return nil, newIOError("write", path, err)
	}
	return s, nil
}

// Path returns the output file path.
func (s *CSVSink) Path() string { return s.path }

// header builds the column names for the configured layout.
func (s *CSVSink) header() []string {
	if s.layout == LayoutLong {
		return s.schema.Names()
	}
	attrs := s.schema.Attributes()
	cols := make([]string, 0, 2+s.slots*len(attrs))
	cols = append(cols, "run", "event")
	for k := 1; k <= s.slots; k++ {
		suffix := strconv.Itoa(k)
		for _, f := range attrs {
			cols = append(cols, f.Name+suffix)
		}
	}
	return cols
}

// WriteRecords appends rows for records. In the wide layout consecutive
// records of the same event share one row. Events are told apart by
// Seq as well as (Run, Event), so repeated event ids from different
// inputs stay on separate rows. Records past the slot count are dropped.
func (s *CSVSink) WriteRecords(_ context.Context, records []types.AttributeRecord) error {
	if s.closed {
		return newIOError("write", s.path, os.ErrClosed)
	}
	if len(records) == 0 {
		return nil
	}

	if s.layout == LayoutLong {
		for _, rec := range records {
			s.row = s.row[:0]
			for _, v := range rec.Values {
				s.row = append(s.row, v.Format())
			}
			if err := s.w.Write(s.row); err != nil {
				return newIOError("write", s.path, err)
			}
		}
	} else {
		start := 0
		for i := 1; i <= len(records); i++ {
			if i < len(records) && sameEvent(records[i], records[start]) {
				continue
			}
			if err := s.w.Write(s.wideRow(records[start:i])); err != nil {
				return newIOError("write", s.path, err)
			}
			start = i
		}
	}

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return newIOError("write", s.path, err)
	}
	return nil
}

func sameEvent(a, b types.AttributeRecord) bool {
	return a.Seq == b.Seq && a.Run == b.Run && a.Event == b.Event
}

// wideRow renders one event's records into slot columns.
func (s *CSVSink) wideRow(records []types.AttributeRecord) []string {
	attrs := s.schema.Attributes()
	s.row = s.row[:0]
	s.row = append(s.row,
		strconv.FormatUint(records[0].Run, 10),
		strconv.FormatUint(records[0].Event, 10),
	)
	for k := 0; k < s.slots; k++ {
		for a, f := range attrs {
			switch {
			case k < len(records):
				s.row = append(s.row, records[k].Attr(a).Format())
			case f.Kind == types.ValueString:
				s.row = append(s.row, records[0].Attr(a).Format())
			default:
				s.row = append(s.row, widePad)
			}
		}
	}
	return s.row
}

// Close flushes buffered rows and closes the file. Calling Close again
// is a no-op.
func (s *CSVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	werr := s.w.Error()
	cerr := s.file.Close()

	if werr != nil {
		return newIOError("write", s.path, werr)
	}
	if cerr != nil {
		return newIOError("close", s.path, cerr)
	}
	return nil
}

// Verify CSVSink implements policy.Sink.
var _ policy.Sink = (*CSVSink)(nil)
