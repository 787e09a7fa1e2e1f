package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint captures a target's source state at two precisions. Stat is
// cheap (path, size, mtime); Content hashes file bytes. Freshness checks
// compare Stat first and only fall back to Content when Stat differs, so a
// touched-but-unchanged file does not trigger a rebuild.
type Fingerprint struct {
	Stat    string
	Content string
}

// Encode renders the fingerprint for storage.
func (f Fingerprint) Encode() string {
	return f.Stat + ":" + f.Content
}

// ParseFingerprint reads a stored fingerprint. Unparseable values are
// treated as absent by callers, forcing a rebuild.
func ParseFingerprint(encoded string) (Fingerprint, bool) {
	stat, content, found := strings.Cut(encoded, ":")
	if !found || stat == "" || content == "" {
		return Fingerprint{}, false
	}
	return Fingerprint{Stat: stat, Content: content}, true
}

// ComputeFingerprint walks the given source paths and produces their
// combined fingerprint. Files are enumerated in sorted order so the result
// is stable across runs. Missing paths contribute a marker instead of
// failing, so a deleted source reads as a change.
func ComputeFingerprint(sources []string) (Fingerprint, error) {
	files, missing, err := enumerateSources(sources)
	if err != nil {
		return Fingerprint{}, err
	}

	statHash := sha256.New()
	for _, path := range missing {
		fmt.Fprintf(statHash, "missing\x00%s\x00", path)
	}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return Fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
		}
		fmt.Fprintf(statHash, "%s\x00%s\x00%s\x00",
			path, strconv.FormatInt(info.Size(), 10), strconv.FormatInt(info.ModTime().UnixNano(), 10))
	}

	contentHash := sha256.New()
	for _, path := range missing {
		fmt.Fprintf(contentHash, "missing\x00%s\x00", path)
	}
	for _, path := range files {
		if err := hashFile(contentHash, path); err != nil {
			return Fingerprint{}, err
		}
	}

	return Fingerprint{
		Stat:    hex.EncodeToString(statHash.Sum(nil)),
		Content: hex.EncodeToString(contentHash.Sum(nil)),
	}, nil
}

// ContentMatches reports whether the stored fingerprint still describes the
// current sources, using the stat comparison as a fast path.
func ContentMatches(stored, current Fingerprint) bool {
	if stored.Stat == current.Stat {
		return true
	}
	return stored.Content == current.Content
}

func enumerateSources(sources []string) (files, missing []string, err error) {
	seen := make(map[string]struct{})
	for _, source := range sources {
		info, statErr := os.Stat(source)
		if statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				missing = append(missing, source)
				continue
			}
			return nil, nil, fmt.Errorf("stat %s: %w", source, statErr)
		}
		if !info.IsDir() {
			if _, dup := seen[source]; !dup {
				seen[source] = struct{}{}
				files = append(files, source)
			}
			continue
		}
		walkErr := filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, fmt.Errorf("walk %s: %w", source, walkErr)
		}
	}
	sort.Strings(files)
	sort.Strings(missing)
	return files, missing, nil
}

func hashFile(dst io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	fmt.Fprintf(dst, "%s\x00", path)
	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	return nil
}
