package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMinimalFile(t *testing.T) string {
	t.Helper()
	data := make([]byte, 0, 92)
	data = append(data, "0001"...)
	data = append(data, "V1.00"...)
	data = append(data, "RECORD"...)
	data = append(data, "08192"...)
	id := make([]byte, 60)
	copy(id, "ID")
	data = append(data, id...)
	data = append(data, byte(0), byte(8), 0xFF, 1)    // VR header, length 8
	data = append(data, byte(0), byte(4), byte(0), 0) // LRSH, length 4, no flags, type 0

	path := filepath.Join(t.TempDir(), "minimal.dlis")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRecordsCommand(t *testing.T) {
	path := writeMinimalFile(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"records", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "type=0") {
		t.Fatalf("output = %q, want it to mention type=0", got)
	}
	if !strings.Contains(got, "ok") {
		t.Fatalf("output = %q, want the record marked consistent", got)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "dlisdump version") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestUpdateCommandRejectsDevBuild(t *testing.T) {
	rootCmd.SetArgs([]string{"update"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatalf("Execute: expected an error for a dev build")
	}
	if !strings.Contains(err.Error(), "release builds only") {
		t.Fatalf("err = %v", err)
	}
}
