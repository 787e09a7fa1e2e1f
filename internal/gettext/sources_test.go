package gettext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"a.py",
		"b.py",
		"gui/settings.py",
		"gui/widgets.pyw",
		"comInterfaces/typelib.py",
		"comInterfaces/nested/more.py",
		"userConfig/scratch.py",
		"readme.txt",
	}
	for _, file := range files {
		path := filepath.Join(root, filepath.FromSlash(file))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# source\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCollectSourcesExcludesGeneratedSubtrees(t *testing.T) {
	root := writeSourceTree(t)

	files, err := CollectSources(root)
	if err != nil {
		t.Fatalf("CollectSources: %v", err)
	}

	want := []string{"a.py", "b.py", "gui/settings.py", "gui/widgets.pyw"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
	for _, file := range files {
		if strings.HasPrefix(file, "comInterfaces/") || strings.HasPrefix(file, "userConfig/") {
			t.Fatalf("excluded subtree leaked into file list: %s", file)
		}
	}
}

func TestCollectSourcesKeepsSimilarlyNamedSiblings(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "comInterfacesHelper", "real.py")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := CollectSources(root)
	if err != nil {
		t.Fatalf("CollectSources: %v", err)
	}
	if len(files) != 1 || files[0] != "comInterfacesHelper/real.py" {
		t.Fatalf("files = %v, want the sibling directory kept", files)
	}
}

func TestWriteFileList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.lst")
	if err := WriteFileList(path, []string{"a.py", "gui/settings.py"}); err != nil {
		t.Fatalf("WriteFileList: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a.py\ngui/settings.py\n" {
		t.Fatalf("file list = %q", data)
	}
}
