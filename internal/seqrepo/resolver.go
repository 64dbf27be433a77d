// Package seqrepo resolves reference-sequence identifiers and retrieves
// subsequences, backed by a SeqRepo REST service with optional local
// caching.
package seqrepo

import (
	"context"
	"errors"
)

// Resolver is the sequence-retrieval contract the translators depend on.
// Implementations must be safe for concurrent use across translator
// instances.
type Resolver interface {
	// DeriveRefgetAccession resolves a namespace-prefixed accession
	// (e.g. "refseq:NM_000769.4") to its refget form ("refget:SQ....").
	DeriveRefgetAccession(ctx context.Context, prefixedAccession string) (string, error)
	// TranslateIdentifier returns the identifiers equivalent to id in the
	// given namespace, each prefixed "namespace:id".
	TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error)
	// FetchSubsequence returns the reference bases over the half-open
	// interval [start, end).
	FetchSubsequence(ctx context.Context, accessionOrID string, start, end int64) (string, error)
}

var (
	// ErrUntranslatable reports an identifier with no alias in the
	// requested namespace.
	ErrUntranslatable = errors.New("identifier not translatable")
	// ErrSequenceNotFound reports a sequence miss.
	ErrSequenceNotFound = errors.New("sequence not found")
)
