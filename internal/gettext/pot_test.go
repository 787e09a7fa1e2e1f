package gettext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTemplate = `# SOME DESCRIPTIVE TITLE.
# Copyright (C) YEAR THE PACKAGE'S COPYRIGHT HOLDER
# This file is distributed under the same license as the myapp package.
# FIRST AUTHOR <EMAIL@ADDRESS>, YEAR.
#
#, fuzzy
msgid ""
msgstr ""
"Project-Id-Version: myapp 2026.1\n"
"Report-Msgid-Bugs-To: \n"
"POT-Creation-Date: 2026-08-31 10:00+0000\n"
"PO-Revision-Date: YEAR-MO-DA HO:MI+ZONE\n"
"Last-Translator: FULL NAME <EMAIL@ADDRESS>\n"
"Language-Team: LANGUAGE <LL@li.org>\n"
"Language: \n"
"MIME-Version: 1.0\n"
"Content-Type: text/plain; charset=CHARSET\n"
"Content-Transfer-Encoding: 8bit\n"

#. Translators: shown while the charset=CHARSET example renders
msgid "Hello"
msgstr ""
`

const testCopyright = "# Copyright (C) 2026 Example Org"

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "myapp.pot")
	if err := os.WriteFile(path, []byte(sampleTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPostProcessRewritesHeader(t *testing.T) {
	path := writeTemplate(t)
	if err := PostProcess(path, testCopyright, "en"); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(data), "\n")

	if lines[1] != testCopyright {
		t.Errorf("line 2 = %q, want copyright notice", lines[1])
	}
	if strings.Contains(string(data), "distributed under the same license") {
		t.Error("boilerplate license line should be removed")
	}
	if lines[2] != "# FIRST AUTHOR <EMAIL@ADDRESS>, YEAR." {
		t.Errorf("line 3 = %q, want lines shifted up after deletion", lines[2])
	}
	if lines[13] != `"Language: en\n"` {
		t.Errorf("language line = %q, want the source language stamped", lines[13])
	}
	if lines[15] != `"Content-Type: text/plain; charset=UTF-8\n"` {
		t.Errorf("charset line = %q, want UTF-8 substitution", lines[15])
	}
	if got := strings.Count(string(data), "charset=CHARSET"); got != 1 {
		t.Errorf("placeholder occurrences outside the header = %d, want the comment untouched", got)
	}
}

func TestPostProcessRejectsShortTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.pot")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := PostProcess(path, testCopyright, "en"); err == nil {
		t.Fatal("expected error for truncated template")
	}
}

func TestPostProcessRejectsMissingPlaceholder(t *testing.T) {
	path := writeTemplate(t)
	clean := strings.ReplaceAll(sampleTemplate, "charset=CHARSET", "charset=UTF-8")
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := PostProcess(path, testCopyright, "en"); err == nil {
		t.Fatal("expected error when the charset placeholder is absent")
	}
}

func TestPostProcessRejectsMissingLanguageHeader(t *testing.T) {
	path := writeTemplate(t)
	clean := strings.Replace(sampleTemplate, `"Language: \n"`+"\n", "", 1)
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := PostProcess(path, testCopyright, "en"); err == nil {
		t.Fatal("expected error when the language header is absent")
	}
	// Without a source language the header is optional.
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := PostProcess(path, testCopyright, ""); err != nil {
		t.Fatalf("PostProcess without language: %v", err)
	}
}
