package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/sportsbook-explorer/internal/export"
	"github.com/cypherlabdev/sportsbook-explorer/internal/metrics"
	"github.com/cypherlabdev/sportsbook-explorer/internal/mocks"
	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
	"github.com/cypherlabdev/sportsbook-explorer/internal/sportsbook"
	"github.com/cypherlabdev/sportsbook-explorer/pkg/pivot"
)

// testExplorerSetup is a helper struct to hold test dependencies
type testExplorerSetup struct {
	service       *ExplorerService
	mockFetcher   *mocks.MockFetcher
	mockStore     *mocks.MockResultStore
	mockPublisher *mocks.MockPublisher
	metrics       *metrics.Metrics
	ctx           context.Context
}

// setupTestExplorer creates a service with mocked dependencies
func setupTestExplorer(t *testing.T) *testExplorerSetup {
	ctrl := gomock.NewController(t)

	setup := &testExplorerSetup{
		mockFetcher:   mocks.NewMockFetcher(ctrl),
		mockStore:     mocks.NewMockResultStore(ctrl),
		mockPublisher: mocks.NewMockPublisher(ctrl),
		metrics:       metrics.New(prometheus.NewRegistry()),
		ctx:           context.Background(),
	}

	logger := zerolog.Nop()
	setup.service = NewExplorerService(
		setup.mockFetcher,
		pivot.NewParser(logger),
		setup.mockStore,
		setup.mockPublisher,
		setup.metrics,
		logger,
	)

	return setup
}

var winsQuery = models.Query{LeagueID: 88808, CategoryID: 1286, SubcategoryID: 13365}

func winsSelections() []models.Selection {
	return []models.Selection{
		{ID: "1", Label: "Dolphins Over 10.5", Odds: 150},
		{ID: "2", Label: "Dolphins Under 10.5", Odds: -170},
		{ID: "3", Label: "Chiefs (Super Bowl Winner)", Odds: 550},
	}
}

func TestExplore_Success(t *testing.T) {
	setup := setupTestExplorer(t)

	var saved *models.ResultSet
	setup.mockFetcher.EXPECT().FetchSelections(gomock.Any(), winsQuery).Return(&models.Batch{Selections: winsSelections()}, nil)
	setup.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rs *models.ResultSet) error {
			saved = rs
			return nil
		})
	setup.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	rs, err := setup.service.Explore(setup.ctx, winsQuery)

	require.NoError(t, err)
	assert.Same(t, saved, rs)
	assert.Equal(t, winsQuery, rs.Query)
	assert.Equal(t, 3, rs.SelectionCount)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, models.ShapeMixed, rs.Shape())

	row := rs.Rows[0].(models.PivotRow)
	assert.Equal(t, "Dolphins", row.Participant)
	assert.Equal(t, "+150", pivot.FormatOdds(row.OverOdds))
	assert.Equal(t, "-170", pivot.FormatOdds(row.UnderOdds))

	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Fetches.WithLabelValues(metrics.OutcomeSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(setup.metrics.SelectionsParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Rows.WithLabelValues("pivot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Rows.WithLabelValues("flat")))
}

func TestExplore_ReportsSkippedSelections(t *testing.T) {
	setup := setupTestExplorer(t)

	batch := &models.Batch{Selections: winsSelections(), Skipped: 2}
	setup.mockFetcher.EXPECT().FetchSelections(gomock.Any(), winsQuery).Return(batch, nil)
	setup.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	setup.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	rs, err := setup.service.Explore(setup.ctx, winsQuery)

	require.NoError(t, err)
	assert.Equal(t, 3, rs.SelectionCount)
	assert.Equal(t, 2, rs.SkippedCount)
}

func TestExplore_InvalidQuery(t *testing.T) {
	setup := setupTestExplorer(t)

	tests := []models.Query{
		{LeagueID: 0, CategoryID: 1},
		{LeagueID: 1, CategoryID: 0},
		{LeagueID: 1, CategoryID: 1, SubcategoryID: -1},
	}

	for _, q := range tests {
		rs, err := setup.service.Explore(setup.ctx, q)
		assert.Nil(t, rs)
		assert.True(t, errors.Is(err, models.ErrInvalidQuery))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(setup.metrics.Fetches.WithLabelValues(metrics.OutcomeInvalidQuery)))
}

func TestExplore_NetworkErrorSurfacedVerbatim(t *testing.T) {
	setup := setupTestExplorer(t)

	netErr := &sportsbook.NetworkError{URL: "https://example.test", StatusCode: 503}
	setup.mockFetcher.EXPECT().FetchSelections(gomock.Any(), winsQuery).Return(nil, netErr)

	rs, err := setup.service.Explore(setup.ctx, winsQuery)

	assert.Nil(t, rs)
	assert.Same(t, netErr, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Fetches.WithLabelValues(metrics.OutcomeNetworkError)))
}

func TestExplore_FormatError(t *testing.T) {
	setup := setupTestExplorer(t)

	fmtErr := &sportsbook.FormatError{URL: "https://example.test", Reason: "response has no selections"}
	setup.mockFetcher.EXPECT().FetchSelections(gomock.Any(), winsQuery).Return(nil, fmtErr)

	_, err := setup.service.Explore(setup.ctx, winsQuery)

	assert.Equal(t, fmtErr.Error(), err.Error())
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Fetches.WithLabelValues(metrics.OutcomeFormatError)))
}

func TestExplore_StoreAndPublishFailuresDoNotFail(t *testing.T) {
	setup := setupTestExplorer(t)

	setup.mockFetcher.EXPECT().FetchSelections(gomock.Any(), winsQuery).Return(&models.Batch{Selections: winsSelections()}, nil)
	setup.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	setup.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	rs, err := setup.service.Explore(setup.ctx, winsQuery)

	require.NoError(t, err)
	assert.Len(t, rs.Rows, 2)
}

func TestExplore_NilPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	store := mocks.NewMockResultStore(ctrl)

	svc := NewExplorerService(fetcher, pivot.NewParser(zerolog.Nop()), store, nil,
		metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	fetcher.EXPECT().FetchSelections(gomock.Any(), winsQuery).Return(nil, nil)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	rs, err := svc.Explore(context.Background(), winsQuery)

	require.NoError(t, err)
	assert.Empty(t, rs.Rows)
	assert.Equal(t, models.ShapeFlat, rs.Shape())
}

func TestLastResult(t *testing.T) {
	setup := setupTestExplorer(t)

	stored := &models.ResultSet{Query: winsQuery}
	setup.mockStore.EXPECT().Last(gomock.Any()).Return(stored, nil)

	rs, err := setup.service.LastResult(setup.ctx)

	require.NoError(t, err)
	assert.Same(t, stored, rs)
}

func TestLastResult_None(t *testing.T) {
	setup := setupTestExplorer(t)

	setup.mockStore.EXPECT().Last(gomock.Any()).Return(nil, models.ErrNoResult)

	_, err := setup.service.LastResult(setup.ctx)

	assert.True(t, errors.Is(err, models.ErrNoResult))
}

func TestLastResult_StoreError(t *testing.T) {
	setup := setupTestExplorer(t)

	setup.mockStore.EXPECT().Last(gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := setup.service.LastResult(setup.ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load last result")
}

func TestExportLast(t *testing.T) {
	setup := setupTestExplorer(t)

	parsed := pivot.Parse(winsSelections()[:2])
	stored := &models.ResultSet{Query: winsQuery, Rows: parsed.Rows}
	setup.mockStore.EXPECT().Last(gomock.Any()).Return(stored, nil)

	var buf bytes.Buffer
	rs, err := setup.service.ExportLast(setup.ctx, &buf, export.FormatCSV)

	require.NoError(t, err)
	assert.Same(t, stored, rs)
	assert.Equal(t, "Participant,Line,Over Odds,Under Odds\nDolphins,10.5,+150,-170\n", buf.String())
}

func TestPing(t *testing.T) {
	setup := setupTestExplorer(t)

	setup.mockStore.EXPECT().Ping(gomock.Any()).Return(nil)

	assert.NoError(t, setup.service.Ping(setup.ctx))
}
