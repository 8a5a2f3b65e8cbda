package service

import (
	"context"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

// Fetcher is an interface that abstracts the sportsbook feed
// This allows for easier testing and mocking
type Fetcher interface {
	FetchSelections(ctx context.Context, q models.Query) (*models.Batch, error)
}

// Publisher is an interface that abstracts result fan-out
type Publisher interface {
	Publish(ctx context.Context, rs *models.ResultSet) error
}
