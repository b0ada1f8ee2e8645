package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroPull/internal/domain/models"
	"MacroPull/pkg/logger"
)

type fakePublisher struct {
	mu    sync.Mutex
	snaps []models.ReactionSnapshot
	err   error
}

func (f *fakePublisher) Archive(_ context.Context, s models.ReactionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.snaps = append(f.snaps, s)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeStore struct {
	mu   sync.Mutex
	rows []models.ArchivedReturn
}

func (f *fakeStore) Init(context.Context) error   { return nil }
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

func (f *fakeStore) StoreBatch(_ context.Context, rows []models.ArchivedReturn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeStore) History(_ context.Context, q models.HistoryQuery) ([]models.ArchivedReturn, error) {
	var out []models.ArchivedReturn
	for _, r := range f.rows {
		if q.Ticker == "" || r.Ticker == q.Ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

func sampleRows() []models.ReactionRow {
	return []models.ReactionRow{
		{Ticker: "SPY", Name: "S&P 500 ETF", Category: models.CategoryEquities, Returns: models.ReturnSet{"1m": 0.4, "5m": 0.6}},
		{Ticker: "^VIX", Name: "VIX Index", Category: models.CategoryVolatility, Returns: models.ReturnSet{"1m": -3}},
	}
}

func TestArchiverKafka(t *testing.T) {
	pub := &fakePublisher{}
	m := newFakeMetrics()
	a := NewReactionArchiver(pub, nil, m, logger.Nop(), ArchiveKafka)

	a.Record(context.Background(), time.Date(2025, 1, 10, 8, 30, 0, 0, ny), "CPI", sampleRows())
	require.Len(t, pub.snaps, 1)
	assert.NotEmpty(t, pub.snaps[0].ID)
	assert.Equal(t, "CPI", pub.snaps[0].EventName)
	assert.Equal(t, 2, m.archived[ArchiveKafka])
}

func TestArchiverClickHouseFlattens(t *testing.T) {
	store := &fakeStore{}
	a := NewReactionArchiver(nil, store, newFakeMetrics(), logger.Nop(), ArchiveClickHouse)

	a.Record(context.Background(), time.Date(2025, 1, 10, 8, 30, 0, 0, ny), "", sampleRows())
	require.Len(t, store.rows, 3)
	assert.Equal(t, "1m", store.rows[0].Horizon)
	assert.Equal(t, "5m", store.rows[1].Horizon)
	assert.Equal(t, store.rows[0].SnapshotID, store.rows[2].SnapshotID)

	hist, err := a.History(context.Background(), models.HistoryQuery{Ticker: "^VIX"})
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestArchiverSwallowsFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	a := NewReactionArchiver(pub, nil, newFakeMetrics(), logger.Nop(), ArchiveKafka)
	a.Record(context.Background(), time.Now(), "", sampleRows())

	err := a.Archive(context.Background(), models.ReactionSnapshot{ID: "x"})
	assert.Error(t, err)
}

func TestArchiverNoneAndHistoryDisabled(t *testing.T) {
	a := NewReactionArchiver(nil, nil, newFakeMetrics(), logger.Nop(), ArchiveNone)
	a.Record(context.Background(), time.Now(), "", sampleRows())
	_, err := a.History(context.Background(), models.HistoryQuery{})
	assert.ErrorIs(t, err, models.ErrArchiveDisabled)
}

func TestKafkaSnapshotHandler(t *testing.T) {
	store := &fakeStore{}
	h := NewKafkaSnapshotHandler("macropull.reactions", store, newFakeMetrics())
	assert.Equal(t, "macropull.reactions", h.Topic())

	snap := models.ReactionSnapshot{
		ID:         "8b1f",
		EventTime:  time.Date(2025, 1, 10, 8, 30, 0, 0, ny),
		ComputedAt: time.Now().UTC(),
		Rows:       sampleRows(),
	}
	b, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), b))
	require.Len(t, store.rows, 3)
	assert.Equal(t, "8b1f", store.rows[0].SnapshotID)

	assert.Error(t, h.Handle(context.Background(), []byte("{")))
}
