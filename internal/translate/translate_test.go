package translate

import (
	"context"
	"fmt"
)

// fakeResolver is an in-memory seqrepo.Resolver backed by maps.
type fakeResolver struct {
	// refgets maps prefixed accessions (refseq:NC_...) to refget accessions.
	refgets map[string]string
	// aliases maps "<id>/<namespace>" to translated identifiers.
	aliases map[string][]string
	// sequences maps accessions or ids to full reference sequences.
	sequences map[string]string
}

func (f *fakeResolver) DeriveRefgetAccession(ctx context.Context, prefixedAccession string) (string, error) {
	acc, ok := f.refgets[prefixedAccession]
	if !ok {
		return "", fmt.Errorf("no refget accession for %q", prefixedAccession)
	}
	return acc, nil
}

func (f *fakeResolver) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	aliases, ok := f.aliases[id+"/"+namespace]
	if !ok {
		return nil, fmt.Errorf("no %s alias for %q", namespace, id)
	}
	return aliases, nil
}

func (f *fakeResolver) FetchSubsequence(ctx context.Context, accessionOrID string, start, end int64) (string, error) {
	seq, ok := f.sequences[accessionOrID]
	if !ok {
		return "", fmt.Errorf("unknown sequence %q", accessionOrID)
	}
	if start < 0 {
		start = 0
	}
	if end > int64(len(seq)) {
		end = int64(len(seq))
	}
	if start > end {
		return "", fmt.Errorf("inverted interval [%d, %d)", start, end)
	}
	return seq[start:end], nil
}
