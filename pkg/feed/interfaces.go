package feed

import (
	"context"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

// Fetcher retrieves and parses one feed endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]RawItem, error)
}

// HTTPClient is the transport used by RSSFetcher.
type HTTPClient = httpclient.Client
