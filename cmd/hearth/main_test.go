package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), strings.NewReader(""), &out, &out, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Usage: hearth") {
		t.Errorf("output missing usage text:\n%s", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "frobnicate") {
		t.Errorf("run() error = %v, want unknown-command error", err)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"-bogus"})
	if err == nil || !strings.Contains(err.Error(), "-bogus") {
		t.Errorf("run() error = %v, want unknown-flag error", err)
	}
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"version"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"hearth", "go_version"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunAskRequiresArgument(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"ask"})
	if err == nil || !strings.Contains(err.Error(), "usage") {
		t.Errorf("run() error = %v, want usage error", err)
	}
}
