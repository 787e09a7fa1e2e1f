// Package fileutil provides the verified file copy used when staging
// runtime libraries into the distribution tree.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyVerified copies src to dst and confirms the bytes that landed on
// disk hash identically to the source stream. The destination is read
// back after the copy, so a short write or corruption surfaces here
// instead of inside a shipped distribution. A failed or mismatched copy
// removes dst before returning.
func CopyVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	want := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, want))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}

	got, size, err := hashFile(dst)
	if err != nil {
		os.Remove(dst)
		return err
	}
	if size != written || !bytes.Equal(got, want.Sum(nil)) {
		os.Remove(dst)
		return fmt.Errorf("copy %s: destination does not match source", src)
	}
	return nil
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reopen destination: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("hash destination: %w", err)
	}
	return h.Sum(nil), n, nil
}
