package archive

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"io/fs"
)

// zipWriter wraps archive/zip with a per-archive deflate level. Registering
// the compressor on the writer keeps the level scoped to this archive
// instead of mutating package-global compression state.
type zipWriter struct {
	zw     *zip.Writer
	method uint16
}

func newZipWriter(w io.Writer, level int) *zipWriter {
	zw := zip.NewWriter(w)
	if level == NoCompression {
		return &zipWriter{zw: zw, method: zip.Store}
	}
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &zipWriter{zw: zw, method: zip.Deflate}
}

func (z *zipWriter) addDir(name string) error {
	if _, err := z.zw.Create(name); err != nil {
		return fmt.Errorf("archive: add directory %s: %w", name, err)
	}
	return nil
}

func (z *zipWriter) addFile(name string, info fs.FileInfo, contents io.Reader) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("archive: header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = z.method

	dst, err := z.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("archive: add %s: %w", name, err)
	}
	if _, err := io.Copy(dst, contents); err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	return nil
}

func (z *zipWriter) Close() error {
	return z.zw.Close()
}
