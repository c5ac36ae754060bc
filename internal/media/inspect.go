package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLen matches the read limit mimetype uses for detection.
const SniffLen = 3072

// Inspect builds a File from a local path, sniffing its content type.
func Inspect(path string, duration time.Duration) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	head := make([]byte, SniffLen)
	n, err := io.ReadFull(fh, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	head = head[:n]

	return File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: mimetype.Detect(head).String(),
		Duration:    duration,
		Head:        head,
	}, nil
}
