package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus signals that no documents were loaded at engine construction.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrCapabilityUnavailable signals a strategy whose backend was never fitted.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNotInitialized signals use of a vectorizer or engine before it was built.
	ErrNotInitialized = errors.New("not initialized")
	// ErrSpaceMismatch signals a comparison between vectors of different feature spaces.
	ErrSpaceMismatch = errors.New("vector space mismatch")
	// ErrInvalidArgument signals a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals a spent token budget in reject mode.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
)

// DocumentNotFoundError wraps ErrDocumentNotFound with the requested id.
type DocumentNotFoundError struct {
	ID int
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("%s: id %d", ErrDocumentNotFound.Error(), e.ID)
}

func (e *DocumentNotFoundError) Unwrap() error { return ErrDocumentNotFound }

// NewDocumentNotFound creates a document-not-found error for id.
func NewDocumentNotFound(id int) error {
	return &DocumentNotFoundError{ID: id}
}
