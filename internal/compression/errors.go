package compression

import (
	"errors"
	"fmt"
)

var (
	ErrDecode                 = errors.New("input could not be decoded")
	ErrEncode                 = errors.New("output could not be encoded")
	ErrConversion             = errors.New("webp conversion failed")
	ErrUnsupportedCodec       = errors.New("unsupported audio codec")
	ErrEmptyAudio             = errors.New("decoded audio has no duration")
	ErrEncodingProducedNoData = errors.New("encoder produced no data")
	ErrNoProcessableFiles     = errors.New("no processable files")
	ErrUnsupportedMediaType   = errors.New("unsupported media type for pipeline")

	ErrUnknownPipeline = errors.New("unknown pipeline")
	ErrUnknownLevel    = errors.New("unknown compression level")
)

// CompressionError attaches the failing operation and file to one of the
// taxonomy errors above. errors.Is matches both Kind and the wrapped cause.
type CompressionError struct {
	Op        string
	File      string
	MediaType string
	Kind      error
	Err       error
}

func (e *CompressionError) Error() string {
	if errors.Is(e.Kind, ErrUnsupportedCodec) {
		msg := fmt.Sprintf("%s: cannot decode %q (%s), use MP3 or WAV", e.Op, e.File, mediaTypeOrUnknown(e.MediaType))
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}

	msg := e.Op
	if e.File != "" {
		msg += fmt.Sprintf(" %q", e.File)
	}
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompressionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewCompressionError creates a new compression error
func NewCompressionError(op, file, mediaType string, kind, err error) *CompressionError {
	return &CompressionError{
		Op:        op,
		File:      file,
		MediaType: mediaType,
		Kind:      kind,
		Err:       err,
	}
}

func mediaTypeOrUnknown(mediaType string) string {
	if mediaType == "" {
		return "unknown type"
	}
	return mediaType
}
