package service

import (
	"context"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

// ResultStore is an interface that abstracts where the last result set lives
// This allows for easier testing and mocking
type ResultStore interface {
	Save(ctx context.Context, rs *models.ResultSet) error
	Last(ctx context.Context) (*models.ResultSet, error)
	Ping(ctx context.Context) error
	Close() error
}
