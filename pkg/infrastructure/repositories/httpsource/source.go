// Package httpsource fetches the catalog document over HTTP, bypassing caches.
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
)

// maxDocumentSize bounds the catalog body read into memory.
const maxDocumentSize = 32 << 20

// Source fetches the catalog document from a URL
type Source struct {
	url    string
	client *http.Client
}

// NewSource creates an HTTP catalog source. A nil client uses a client
// without timeout; a stalled fetch is only ended through the context.
func NewSource(url string, client *http.Client) *Source {
	if client == nil {
		client = &http.Client{}
	}
	return &Source{url: url, client: client}
}

var _ repositories.CatalogSource = (*Source)(nil)

// FetchCatalog issues a single cache-bypassing GET and decodes the body
func (s *Source) FetchCatalog(ctx context.Context) (*entities.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, &entities.FetchError{Source: s.url, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &entities.FetchError{Source: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &entities.FetchError{Source: s.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, &entities.FetchError{Source: s.url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(body) > maxDocumentSize {
		return nil, &entities.ParseError{Err: fmt.Errorf("document exceeds %d bytes", maxDocumentSize)}
	}

	return entities.ParseCatalog(body)
}

// Location returns the URL
func (s *Source) Location() string {
	return s.url
}
