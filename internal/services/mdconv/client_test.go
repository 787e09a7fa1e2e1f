package mdconv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"shipwright/internal/services"
)

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("MDCONV_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "parse error")
		os.Exit(1)
	}
	os.Exit(2)
}

func stubCommand(t *testing.T, mode string, capture *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if capture != nil {
			*capture = append(*capture, append([]string(nil), args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"MDCONV_HELPER_MODE="+mode,
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestConvertArgs(t *testing.T) {
	var captured [][]string
	stubCommand(t, "success", &captured)

	cli := NewCLI()
	if err := cli.Convert(context.Background(), "docs/userGuide.md", "dist/userGuide.html"); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := []string{"--from=markdown", "--to=html5", "--standalone", "-o", "dist/userGuide.html", "docs/userGuide.md"}
	if len(captured) != 1 {
		t.Fatalf("expected one invocation, got %d", len(captured))
	}
	args := captured[0]
	if len(args) != len(want) {
		t.Fatalf("unexpected args %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: got %q want %q (full: %v)", i, args[i], want[i], args)
		}
	}
}

func TestConvertFailureIsFatal(t *testing.T) {
	stubCommand(t, "fail", nil)

	cli := NewCLI()
	err := cli.Convert(context.Background(), "docs/userGuide.md", "dist/userGuide.html")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}
