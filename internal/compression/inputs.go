package compression

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadInputFiles loads paths into memory. Media types are sniffed from
// content because file pickers only hand back paths.
func ReadInputFiles(paths []string) ([]InputFile, error) {
	files := make([]InputFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		files = append(files, InputFile{
			Name:      filepath.Base(path),
			MediaType: SniffMediaType(data),
			Data:      data,
		})
	}
	return files, nil
}
