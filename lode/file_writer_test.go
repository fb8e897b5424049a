package lode

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/justapithecus/lode/lode"
)

func TestLodeClient_PutFile_Path(t *testing.T) {
	store := &FailingStore{}
	client, err := NewLodeClientWithFactory(testConfig("job-3"), sharedFactory(store))
	if err != nil {
		t.Fatalf("NewLodeClientWithFactory failed: %v", err)
	}

	if err := client.PutFile(t.Context(), "notes.txt", "text/plain", []byte("hi")); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}

	want := "datasets/objext/partitions/analyzer=electron/collection=electrons/day=2026-10-16/job_id=job-3/files/notes.txt"
	found := false
	for _, p := range store.PutPaths {
		if p == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Put at %q, got %v", want, store.PutPaths)
	}
}

func TestLodeClient_PutFile_RejectsBadNames(t *testing.T) {
	client, err := NewLodeClientWithFactory(testConfig("job-3"), lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewLodeClientWithFactory failed: %v", err)
	}
	for _, name := range []string{"", "a/b", `a\b`, "..", "x..y"} {
		if err := client.PutFile(t.Context(), name, "", nil); err == nil {
			t.Errorf("PutFile(%q) expected error", name)
		}
	}
}

func TestLodeClient_PutFile_StoreFailure(t *testing.T) {
	store := &FailingStore{}
	client, err := NewLodeClientWithFactory(testConfig("job-3"), sharedFactory(store))
	if err != nil {
		t.Fatalf("NewLodeClientWithFactory failed: %v", err)
	}
	store.PutErr = errors.New("AccessDenied: Forbidden")

	err = client.PutFile(t.Context(), SchemaFilename, "application/json", []byte("{}"))
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestWriteSchema(t *testing.T) {
	fw := NewStubFileWriter()
	if err := WriteSchema(t.Context(), fw, testSchema()); err != nil {
		t.Fatalf("WriteSchema failed: %v", err)
	}
	if len(fw.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(fw.Files))
	}
	f := fw.Files[0]
	if f.Filename != SchemaFilename || f.ContentType != "application/json" {
		t.Errorf("unexpected file record: %s %s", f.Filename, f.ContentType)
	}

	var doc schemaDoc
	if err := json.Unmarshal(f.Data, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if doc.Analyzer != "electron" {
		t.Errorf("analyzer = %q", doc.Analyzer)
	}
	var names []string
	for _, fld := range doc.Fields {
		names = append(names, fld.Name+":"+fld.Kind)
	}
	if got := strings.Join(names, ","); got != "run:int,event:int,index:int,pt:float,ch:int" {
		t.Errorf("fields = %s", got)
	}
}

func TestWriteSchema_MemoryStore(t *testing.T) {
	store := lode.NewMemory()
	client, err := NewLodeClientWithFactory(testConfig("job-4"), sharedFactory(store))
	if err != nil {
		t.Fatalf("NewLodeClientWithFactory failed: %v", err)
	}
	if err := WriteSchema(t.Context(), client, testSchema()); err != nil {
		t.Fatalf("WriteSchema failed: %v", err)
	}

	rc, err := store.Get(t.Context(), client.buildFilePath(SchemaFilename))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !strings.Contains(string(data), `"analyzer": "electron"`) {
		t.Errorf("unexpected schema content: %s", data)
	}
}
