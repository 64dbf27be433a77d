package seqrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public SeqRepo REST service.
const DefaultBaseURL = "https://services.genomicmedlab.org/seqrepo/1/"

// RESTResolver resolves identifiers and fetches subsequences from a SeqRepo
// REST API. Retries and backoff are left to the caller; the client only
// carries a request timeout.
type RESTResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTResolver creates a resolver against the given SeqRepo base URL.
// An empty baseURL selects the public service.
func NewRESTResolver(baseURL string) *RESTResolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &RESTResolver{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// metadataResponse is the SeqRepo metadata endpoint payload.
type metadataResponse struct {
	Length  int64    `json:"length"`
	Aliases []string `json:"aliases"`
}

// DeriveRefgetAccession resolves a prefixed accession to its refget form by
// scanning the sequence metadata for a ga4gh alias.
func (r *RESTResolver) DeriveRefgetAccession(ctx context.Context, prefixedAccession string) (string, error) {
	meta, err := r.metadata(ctx, prefixedAccession)
	if err != nil {
		return "", err
	}
	for _, alias := range meta.Aliases {
		if sq, ok := strings.CutPrefix(alias, "ga4gh:"); ok {
			return "refget:" + sq, nil
		}
	}
	return "", fmt.Errorf("%w: no refget alias for %q", ErrUntranslatable, prefixedAccession)
}

// TranslateIdentifier returns the aliases of id in the given namespace,
// each in "namespace:id" form.
func (r *RESTResolver) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	meta, err := r.metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []string
	prefix := namespace + ":"
	for _, alias := range meta.Aliases {
		if strings.HasPrefix(alias, prefix) {
			out = append(out, alias)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q in namespace %q", ErrUntranslatable, id, namespace)
	}
	return out, nil
}

// FetchSubsequence fetches the bases over [start, end).
func (r *RESTResolver) FetchSubsequence(ctx context.Context, accessionOrID string, start, end int64) (string, error) {
	u := fmt.Sprintf("%ssequence/%s?start=%d&end=%d", r.baseURL, url.PathEscape(accessionOrID), start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("seqrepo sequence request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %q", ErrSequenceNotFound, accessionOrID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("seqrepo sequence error %d: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read seqrepo response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (r *RESTResolver) metadata(ctx context.Context, id string) (*metadataResponse, error) {
	u := r.baseURL + "metadata/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seqrepo metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrUntranslatable, id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("seqrepo metadata error %d: %s", resp.StatusCode, string(body))
	}
	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode seqrepo metadata: %w", err)
	}
	return &meta, nil
}
