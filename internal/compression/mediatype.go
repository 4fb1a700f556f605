package compression

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const genericMediaType = "application/octet-stream"

// ResolveMediaType returns the declared media type without parameters, or
// the type sniffed from data when nothing useful was declared.
func ResolveMediaType(declared string, data []byte) string {
	if cleaned := normalizeMediaType(declared); cleaned != "" && cleaned != genericMediaType {
		return cleaned
	}
	return SniffMediaType(data)
}

// SniffMediaType detects the media type from the leading bytes of data.
func SniffMediaType(data []byte) string {
	return normalizeMediaType(mimetype.Detect(data).String())
}

// Accepts reports whether a file of mediaType belongs in pipeline.
func (p Pipeline) Accepts(mediaType string) bool {
	mediaType = normalizeMediaType(mediaType)
	switch p {
	case PipelineImage, PipelineWebP:
		return strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml"
	case PipelineAudio:
		// containers such as mp4 and webm are often declared as video
		return strings.HasPrefix(mediaType, "audio/") || strings.HasPrefix(mediaType, "video/") ||
			mediaType == "application/ogg"
	case PipelinePDF:
		return mediaType == "application/pdf"
	}
	return false
}

// IsGenericMediaType reports whether mediaType says nothing about the
// format, as sniffing does for bytes it cannot place.
func IsGenericMediaType(mediaType string) bool {
	switch normalizeMediaType(mediaType) {
	case "", genericMediaType, "text/plain":
		return true
	}
	return false
}

// RejectionKind is the error kind a pipeline reports for input it cannot
// read: images fail to decode, webp conversion fails, audio has an
// unsupported codec.
func (p Pipeline) RejectionKind() error {
	switch p {
	case PipelineImage:
		return ErrDecode
	case PipelineWebP:
		return ErrConversion
	case PipelineAudio:
		return ErrUnsupportedCodec
	}
	return ErrUnsupportedMediaType
}

// NewMediaTypeError rejects a file whose media type does not belong in p.
// It matches both p.RejectionKind() and ErrUnsupportedMediaType.
func NewMediaTypeError(p Pipeline, op, file, mediaType string) *CompressionError {
	kind := p.RejectionKind()
	var cause error
	if kind != ErrUnsupportedMediaType {
		cause = ErrUnsupportedMediaType
	}
	return NewCompressionError(op, file, mediaType, kind, cause)
}

func normalizeMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(value); err == nil {
		return strings.ToLower(parsed)
	}
	return strings.ToLower(value)
}
