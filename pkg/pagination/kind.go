package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/metal-archives-client/pkg/models"
)

// Transport performs a single GET. *client.Client implements it.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Kind is the capability set of one entity kind: where its pages live and
// how to decode them.
type Kind[T any] interface {
	Name() string
	URLTemplate() string
	PageSize() int
	Decode(data []byte) (*models.Page[T], error)
}

// fetchPage resolves, downloads and decodes one page. Transport and parse
// errors are returned unchanged; other decoder errors are wrapped into a
// *models.ParseError.
func fetchPage[T any](ctx context.Context, transport Transport, kind Kind[T], baseURL string, req PageRequest) (*models.Page[T], error) {
	url, err := req.URL(baseURL, kind.URLTemplate())
	if err != nil {
		return nil, err
	}

	data, err := transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	page, err := kind.Decode(data)
	if err != nil {
		var parseErr *models.ParseError
		if errors.As(err, &parseErr) {
			return nil, err
		}
		return nil, &models.ParseError{Kind: kind.Name(), Row: -1, Reason: "decode failed", Err: err}
	}
	if page == nil {
		return nil, &models.ParseError{Kind: kind.Name(), Row: -1, Reason: fmt.Sprintf("decoder returned no page for index %d", req.Index)}
	}

	return page, nil
}
