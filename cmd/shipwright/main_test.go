package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shipwright/internal/logging"
)

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "shipwright")
}

func TestTargetsCommandListsGraph(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"targets"}, env.configPath)
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	for _, name := range []string{"dist", "installer", "clientArchive", "symbolsArchive", "pot", "modlist", "docs", "all"} {
		requireContains(t, out, name)
	}
}

func TestDoctorCommandWithStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v (output %s)", err, out)
	}
	requireContains(t, out, "xgettext")
	requireContains(t, out, "ok")
}

func TestSignCommandRequiresSigningConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"sign", "app.exe"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when signing is not configured")
	}
	if !strings.Contains(err.Error(), "signing is not configured") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildDistIsIncremental(t *testing.T) {
	env := setupCLITestEnv(t)

	sdkRoot := t.TempDir()
	crtDir := filepath.Join(sdkRoot, "Redist", "ucrt", "DLLs", "x86")
	if err := os.MkdirAll(crtDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(crtDir, "ucrtbase.dll"), []byte("dll"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHIPWRIGHT_SDK_ROOT", sdkRoot)
	t.Setenv("SHIPWRIGHT_SDK_VERSION", "")

	if err := os.WriteFile(filepath.Join(env.cfg.Paths.SourceDir, "main.py"), []byte("print()\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"build", "dist"}, env.configPath)
	if err != nil {
		t.Fatalf("build dist: %v (output %s)", err, out)
	}
	requireContains(t, out, "1 built, 0 up to date")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.DistDir(), "ucrtbase.dll")); err != nil {
		t.Fatalf("runtime library missing from distribution: %v", err)
	}

	// The run identifier travels on the context, so per-target log lines
	// carry it too.
	logData, err := os.ReadFile(filepath.Join(env.cfg.Paths.LogDir, "shipwright.log"))
	if err != nil {
		t.Fatalf("read build log: %v", err)
	}
	requireContains(t, string(logData), logging.FieldRunID+"=")

	out, _, err = runCLI(t, []string{"build", "dist"}, env.configPath)
	if err != nil {
		t.Fatalf("rebuild dist: %v (output %s)", err, out)
	}
	requireContains(t, out, "0 built, 1 up to date")

	out, _, err = runCLI(t, []string{"build", "dist", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("forced rebuild: %v (output %s)", err, out)
	}
	requireContains(t, out, "1 built, 0 up to date")
}

func TestBuildRejectsUnknownTarget(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"build", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("unexpected error: %v", err)
	}
}
