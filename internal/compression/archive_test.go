package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) ([]string, map[string][]byte, map[string]uint16) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	contents := make(map[string][]byte)
	methods := make(map[string]uint16)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		names = append(names, f.Name)
		contents[f.Name] = body
		methods[f.Name] = f.Method
	}
	return names, contents, methods
}

func TestBuildArchive(t *testing.T) {
	entries := []ArchiveEntry{
		{Name: "a.jpg", Data: []byte("jpeg bytes")},
		{Name: "report.pdf", Data: bytes.Repeat([]byte("pdf "), 100)},
		{Name: "song.mp3", Data: []byte("mp3 bytes")},
	}

	data, err := BuildArchive(entries)
	require.NoError(t, err)

	names, contents, methods := readArchive(t, data)
	assert.Equal(t, []string{"a.jpg", "report.pdf", "song.mp3"}, names)
	for _, e := range entries {
		assert.Equal(t, e.Data, contents[e.Name])
	}
	assert.Equal(t, zip.Store, methods["a.jpg"])
	assert.Equal(t, zip.Store, methods["song.mp3"])
	assert.Equal(t, zip.Deflate, methods["report.pdf"])
}

func TestBuildArchive_LastWriteWins(t *testing.T) {
	data, err := BuildArchive([]ArchiveEntry{
		{Name: "scan.png", Data: []byte("first")},
		{Name: "other.png", Data: []byte("other")},
		{Name: "scan.png", Data: []byte("second")},
	})
	require.NoError(t, err)

	names, contents, _ := readArchive(t, data)
	assert.Equal(t, []string{"scan.png", "other.png"}, names)
	assert.Equal(t, []byte("second"), contents["scan.png"])
}

func TestBuildArchive_Empty(t *testing.T) {
	_, err := BuildArchive(nil)
	assert.ErrorIs(t, err, ErrNoProcessableFiles)
}
