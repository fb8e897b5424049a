package lode

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestClassifyError_Messages(t *testing.T) {
	tests := []struct {
		errMsg   string
		wantKind error
	}{
		{"context deadline exceeded", ErrTimeout},
		{"connection timeout after 30s", ErrTimeout},
		{"AccessDenied: you do not have access", ErrAccessDenied},
		{"received status 403", ErrAccessDenied},
		{"permission denied for /data/output", ErrPermissionDenied},
		{"NoSuchKey: the specified key does not exist", ErrNotFound},
		{"write /data: no space left on device", ErrDiskFull},
		{"SlowDown: please reduce request rate", ErrThrottled},
		{"ExpiredToken: the security token has expired", ErrAuth},
		{"dial tcp 127.0.0.1:9000: connection refused", ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.errMsg, func(t *testing.T) {
			got := classifyError(errors.New(tt.errMsg))
			if !errors.Is(got, tt.wantKind) {
				t.Errorf("classifyError(%q) = %v, want %v", tt.errMsg, got, tt.wantKind)
			}
		})
	}
}

func TestClassifyError_Fallback(t *testing.T) {
	got := classifyError(errors.New("something completely unexpected happened"))
	if got == nil || got.Error() != "storage error" {
		t.Errorf("classifyError(unknown) = %v, want generic storage error", got)
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestClassifyError_TypedFilesystemErrors(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "missing.objs"))
	if !errors.Is(classifyError(err), ErrNotFound) {
		t.Errorf("classifyError(%v) want ErrNotFound", err)
	}

	perm := &fs.PathError{Op: "open", Path: "/root/x.csv", Err: fs.ErrPermission}
	if !errors.Is(classifyError(perm), ErrPermissionDenied) {
		t.Errorf("classifyError(%v) want ErrPermissionDenied", perm)
	}

	full := fmt.Errorf("flush: %w", syscall.ENOSPC)
	if !errors.Is(classifyError(full), ErrDiskFull) {
		t.Errorf("classifyError(%v) want ErrDiskFull", full)
	}
}

func TestStorageError_Chain(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "out.csv", Err: fs.ErrPermission}
	err := WrapOpenError(cause, "out.csv")

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %T", err)
	}
	if storageErr.Op != "open" || storageErr.Path != "out.csv" {
		t.Errorf("Op/Path = %s/%s, want open/out.csv", storageErr.Op, storageErr.Path)
	}
	if !errors.Is(err, ErrPermissionDenied) {
		t.Error("errors.Is(err, ErrPermissionDenied) = false")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("underlying cause lost from chain")
	}
}

func TestWrapHelpers_Nil(t *testing.T) {
	if WrapWriteError(nil, "p") != nil || WrapReadError(nil, "p") != nil ||
		WrapOpenError(nil, "p") != nil || WrapInitError(nil, "d") != nil {
		t.Error("wrap helpers must return nil for nil errors")
	}
}
