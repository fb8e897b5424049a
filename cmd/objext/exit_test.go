package main

import (
	"errors"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestExitErrHandler_NilError(t *testing.T) {
	// Should not panic or exit on nil error
	exitErrHandler(nil, nil)
}

func TestExitMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"success", cli.Exit("", 0), 0, ""},
		{"config error", cli.Exit("invalid configuration", 1), 1, "invalid configuration"},
		{"input error", cli.Exit("inspect failed", 2), 2, "inspect failed"},
		{"sink failure no message", cli.Exit("", 3), 3, ""},
		{"canceled", cli.Exit("", 4), 4, ""},
		{"wrapped", errors.Join(errors.New("context"), cli.Exit("inner error", 42)), 42, "inner error"},
		{"regular error", errors.New("boom"), 1, "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, code := exitMessage(tt.err)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"run", "inspect", "stats", "generate", "version"} {
		if app.Command(name) == nil {
			t.Errorf("missing command %q", name)
		}
	}
	if app.ExitErrHandler == nil {
		t.Error("ExitErrHandler must be set so run exit codes propagate")
	}
}
