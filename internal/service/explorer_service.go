package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sportsbook-explorer/internal/export"
	"github.com/cypherlabdev/sportsbook-explorer/internal/metrics"
	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
	"github.com/cypherlabdev/sportsbook-explorer/internal/sportsbook"
	"github.com/cypherlabdev/sportsbook-explorer/pkg/pivot"
)

// ExplorerService orchestrates fetch, pivot and storage of category listings
type ExplorerService struct {
	fetcher   Fetcher
	parser    *pivot.Parser
	store     ResultStore
	publisher Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewExplorerService creates a new explorer service. publisher may be nil.
func NewExplorerService(
	fetcher Fetcher,
	parser *pivot.Parser,
	store ResultStore,
	publisher Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ExplorerService {
	return &ExplorerService{
		fetcher:   fetcher,
		parser:    parser,
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With().Str("component", "explorer_service").Logger(),
	}
}

// Explore fetches one category listing, pivots it and keeps it as the last result.
// Fetch failures are returned unchanged so callers can show them verbatim.
func (s *ExplorerService) Explore(ctx context.Context, q models.Query) (*models.ResultSet, error) {
	start := time.Now()

	if !q.Valid() {
		s.metrics.ObserveFetch(metrics.OutcomeInvalidQuery, time.Since(start).Seconds())
		return nil, fmt.Errorf("%w (league=%d category=%d subcategory=%d)",
			models.ErrInvalidQuery, q.LeagueID, q.CategoryID, q.SubcategoryID)
	}

	s.logger.Info().
		Int64("league_id", q.LeagueID).
		Int64("category_id", q.CategoryID).
		Int64("subcategory_id", q.SubcategoryID).
		Msg("exploring category")

	batch, err := s.fetcher.FetchSelections(ctx, q)
	if err != nil {
		s.metrics.ObserveFetch(fetchOutcome(err), time.Since(start).Seconds())
		s.logger.Error().Err(err).Msg("fetch failed")
		return nil, err
	}

	if batch == nil {
		batch = &models.Batch{}
	}

	parsed := s.parser.Parse(batch.Selections)
	rs := &models.ResultSet{
		ID:             uuid.New(),
		Query:          q,
		Rows:           parsed.Rows,
		SelectionCount: parsed.SelectionCount,
		SkippedCount:   batch.Skipped,
		FetchedAt:      time.Now().UTC(),
	}

	if err := s.store.Save(ctx, rs); err != nil {
		s.logger.Warn().
			Err(err).
			Str("result_id", rs.ID.String()).
			Msg("failed to store last result")
		// Don't fail the request on store errors
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rs); err != nil {
			s.logger.Warn().
				Err(err).
				Str("result_id", rs.ID.String()).
				Msg("failed to publish result")
		}
	}

	pivots := countPivots(rs.Rows)
	s.metrics.ObserveRows(rs.SelectionCount, pivots, len(rs.Rows)-pivots)
	s.metrics.ObserveFetch(metrics.OutcomeSuccess, time.Since(start).Seconds())

	s.logger.Info().
		Str("result_id", rs.ID.String()).
		Str("shape", string(rs.Shape())).
		Int("selections", rs.SelectionCount).
		Int("skipped", rs.SkippedCount).
		Int("rows", len(rs.Rows)).
		Msg("explored category")

	return rs, nil
}

// LastResult returns the most recent result set
func (s *ExplorerService) LastResult(ctx context.Context) (*models.ResultSet, error) {
	rs, err := s.store.Last(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNoResult) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load last result: %w", err)
	}
	return rs, nil
}

// ExportLast writes the most recent result set to w in the given format
func (s *ExplorerService) ExportLast(ctx context.Context, w io.Writer, format export.Format) (*models.ResultSet, error) {
	rs, err := s.LastResult(ctx)
	if err != nil {
		return nil, err
	}

	if err := export.NewWriter(format).Write(w, rs); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("result_id", rs.ID.String()).
		Str("format", string(format)).
		Int("rows", len(rs.Rows)).
		Msg("exported last result")

	return rs, nil
}

// Ping checks the result store
func (s *ExplorerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func fetchOutcome(err error) string {
	var fmtErr *sportsbook.FormatError
	if errors.As(err, &fmtErr) {
		return metrics.OutcomeFormatError
	}
	return metrics.OutcomeNetworkError
}

func countPivots(rows []models.Row) int {
	var n int
	for _, row := range rows {
		if row.Kind() == models.RowKindPivot {
			n++
		}
	}
	return n
}
