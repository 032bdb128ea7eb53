package core

import "errors"

var (
	// ErrUnsupportedFormat indicates a MIME type no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptInput indicates bytes that do not match their declared
	// format or that the format parser rejected.
	ErrCorruptInput = errors.New("corrupt document input")

	// ErrEmptyInput indicates a zero-length upload.
	ErrEmptyInput = errors.New("empty document input")

	// ErrIndexUnavailable indicates the vector index could not be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider could not
	// be reached for a call that must not be silently degraded.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrDocumentNotFound covers both a missing document and a document
	// owned by another company; callers cannot tell the two apart.
	ErrDocumentNotFound = errors.New("document not found")
)
