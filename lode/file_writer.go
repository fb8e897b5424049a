package lode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/objext/types"
)

// SchemaFilename is the sidecar written next to each job's partitions.
const SchemaFilename = "schema.json"

// FileWriter writes sidecar files to Lode Store.
// Files land at Hive-partitioned paths under files/, bypassing Dataset
// segment/manifest machinery entirely.
type FileWriter interface {
	// PutFile writes a file to the Hive-partitioned files/ prefix.
	// The filename must not contain path separators or "..".
	PutFile(ctx context.Context, filename, contentType string, data []byte) error
}

// Verify LodeClient implements FileWriter.
var _ FileWriter = (*LodeClient)(nil)

// PutFile writes a sidecar file to Lode Store at the computed Hive path.
func (c *LodeClient) PutFile(ctx context.Context, filename, _ string, data []byte) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid sidecar filename %q", filename)
	}

	store, err := c.getOrCreateStore()
	if err != nil {
		return WrapInitError(err, c.config.Dataset)
	}

	path := c.buildFilePath(filename)
	if err := store.Put(ctx, path, bytes.NewReader(data)); err != nil {
		return WrapWriteError(err, path)
	}
	return nil
}

// getOrCreateStore lazily initializes the Store from the factory.
func (c *LodeClient) getOrCreateStore() (lode.Store, error) {
	c.storeOnce.Do(func() {
		c.store, c.storeErr = c.storeFactory()
	})
	return c.store, c.storeErr
}

// buildFilePath computes the Hive-partitioned path for a sidecar file.
// Format: datasets/<dataset>/partitions/analyzer=<a>/collection=<c>/day=<d>/job_id=<j>/files/<filename>
func (c *LodeClient) buildFilePath(filename string) string {
	return fmt.Sprintf("datasets/%s/partitions/analyzer=%s/collection=%s/day=%s/job_id=%s/files/%s",
		c.config.Dataset,
		c.config.Analyzer,
		c.config.Collection,
		c.config.Day,
		c.config.JobID,
		filename,
	)
}

type schemaDoc struct {
	Analyzer      string        `json:"analyzer"`
	FormatVersion int           `json:"format_version"`
	Fields        []schemaField `json:"fields"`
}

type schemaField struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// WriteSchema writes the record schema as a JSON sidecar so readers can
// recover column order without scanning records.
func WriteSchema(ctx context.Context, fw FileWriter, schema types.Schema) error {
	doc := schemaDoc{
		Analyzer:      schema.Analyzer,
		FormatVersion: types.StoreFormatVersion,
		Fields:        make([]schemaField, 0, len(schema.Fields)),
	}
	for _, f := range schema.Fields {
		doc.Fields = append(doc.Fields, schemaField{Name: f.Name, Kind: f.Kind.String()})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return fw.PutFile(ctx, SchemaFilename, "application/json", data)
}

// StubFileWriter records PutFile calls for testing.
type StubFileWriter struct {
	mu    sync.Mutex
	Files []StubFileRecord
}

// StubFileRecord is a recorded file write for testing.
type StubFileRecord struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewStubFileWriter creates a new stub file writer.
func NewStubFileWriter() *StubFileWriter {
	return &StubFileWriter{}
}

// PutFile implements FileWriter by recording the call.
func (w *StubFileWriter) PutFile(_ context.Context, filename, contentType string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Files = append(w.Files, StubFileRecord{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	return nil
}

// Verify StubFileWriter implements FileWriter.
var _ FileWriter = (*StubFileWriter)(nil)
