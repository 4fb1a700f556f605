package compression

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ArchiveEntry is one named payload inside a bundle.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// storedExtensions are payloads that are already compressed; deflating them
// again only costs time.
var storedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp3":  true,
}

// archiveClock stamps entry modification times.
var archiveClock = time.Now

// BuildArchive bundles entries into a ZIP container. Duplicate names are not
// renamed: the entry keeps the position of its first occurrence and the bytes
// of its last.
func BuildArchive(entries []ArchiveEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrNoProcessableFiles
	}

	order := make([]string, 0, len(entries))
	latest := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.Name]; !seen {
			order = append(order, e.Name)
		}
		latest[e.Name] = e.Data
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := archiveClock()

	for _, name := range order {
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		}
		if storedExtensions[strings.ToLower(filepath.Ext(name))] {
			header.Method = zip.Store
		}

		w, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("create archive entry %q: %w", name, err)
		}
		if _, err := w.Write(latest[name]); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write archive entry %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
