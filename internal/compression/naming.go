package compression

import (
	"path/filepath"
	"strings"
)

// Archive names are part of the user-facing contract.
const (
	ImageArchiveName = "compressed_images.zip"
	AudioArchiveName = "compressed_audio_files.zip"
	PDFArchiveName   = "documents.zip"
	WebPArchiveName  = "converted_webp_images.zip"
)

// ArchiveName returns the bundle name used when a run has more than one file.
func ArchiveName(p Pipeline) string {
	switch p {
	case PipelineImage:
		return ImageArchiveName
	case PipelineAudio:
		return AudioArchiveName
	case PipelinePDF:
		return PDFArchiveName
	case PipelineWebP:
		return WebPArchiveName
	}
	return "compressed_files.zip"
}

// OutputName returns the download name for a single-file run. ext is the
// extension of the produced bytes, including the dot.
func OutputName(p Pipeline, original, ext string) string {
	base := filepath.Base(original)
	switch p {
	case PipelineImage:
		return "compressed_" + withExtension(base, ext)
	case PipelineAudio:
		return stem(base) + "_compressed.mp3"
	case PipelineWebP:
		return stem(base) + ".webp"
	}
	return base
}

// EntryName returns the name of a successfully processed file inside an
// archive: the original base name with a format-appropriate extension.
func EntryName(p Pipeline, original, ext string) string {
	base := filepath.Base(original)
	switch p {
	case PipelineImage:
		return withExtension(base, ext)
	case PipelineAudio:
		return stem(base) + ".mp3"
	case PipelineWebP:
		return stem(base) + ".webp"
	}
	return base
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// withExtension swaps the extension only when the container changed, so
// "photo.JPG" stays "photo.JPG" after a JPEG re-encode.
func withExtension(name, ext string) string {
	if ext == "" {
		return name
	}
	current := strings.ToLower(filepath.Ext(name))
	if current == strings.ToLower(ext) || (current == ".jpeg" && ext == ".jpg") {
		return name
	}
	return stem(name) + ext
}
