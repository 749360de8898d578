package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"affiliate-locator/internal/dataset"
	"affiliate-locator/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLoader is a mock implementation of the dataset.Loader interface
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context) ([]models.Affiliate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Affiliate), args.Error(1)
}

var testAffiliates = []models.Affiliate{
	{ID: 1, Name: "First", Latitude: 53.334, Longitude: -6.254},
	{ID: 2, Name: "Second", Latitude: 53.4, Longitude: -6.3},
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.now
	return store, clock
}

func TestDatasetCache_HitDoesNotReload(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(testAffiliates, nil).Once()
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	first, err := c.GetDataset(context.Background())
	require.NoError(t, err)
	second, err := c.GetDataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testAffiliates, first)
	assert.Equal(t, testAffiliates, second)
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestDatasetCache_ExpiryReloads(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(testAffiliates, nil)
	store, clock := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	_, err := c.GetDataset(context.Background())
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = c.GetDataset(context.Background())
	require.NoError(t, err)
	loader.AssertNumberOfCalls(t, "Load", 1)

	clock.t = clock.t.Add(time.Minute)
	_, err = c.GetDataset(context.Background())
	require.NoError(t, err)
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestDatasetCache_FailureIsNotCached(t *testing.T) {
	var logs bytes.Buffer
	sourceErr := fmt.Errorf("dataset: read %q: %w", "affiliates.txt", dataset.ErrSourceUnavailable)

	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return([]models.Affiliate(nil), sourceErr).Once()
	loader.On("Load", mock.Anything).Return(testAffiliates, nil).Once()
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.New(&logs))

	result, err := c.GetDataset(context.Background())
	assert.ErrorIs(t, err, ErrDatasetLoadFailed)
	assert.ErrorIs(t, err, dataset.ErrSourceUnavailable)
	assert.Nil(t, result)
	assert.Contains(t, logs.String(), "error loading affiliates data")

	_, ok, err := store.Get(context.Background(), DatasetKey)
	require.NoError(t, err)
	assert.False(t, ok)

	result, err = c.GetDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAffiliates, result)
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestDatasetCache_InvalidateTriggersOneReload(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(testAffiliates, nil)
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	_, err := c.GetDataset(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(context.Background()))

	for i := 0; i < 3; i++ {
		_, err = c.GetDataset(context.Background())
		require.NoError(t, err)
	}
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestDatasetCache_InvalidateEmptyCache(t *testing.T) {
	store, _ := newTestStore()
	c := New(new(MockLoader), store, time.Hour, zerolog.Nop())

	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestDatasetCache_NonPositiveTTLAlwaysLoads(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(testAffiliates, nil)
	store, _ := newTestStore()
	c := New(loader, store, 0, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := c.GetDataset(context.Background())
		require.NoError(t, err)
	}
	loader.AssertNumberOfCalls(t, "Load", 3)
}

func TestDatasetCache_CallerOwnsResult(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return([]models.Affiliate{{ID: 1, Name: "First"}}, nil)
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	first, err := c.GetDataset(context.Background())
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := c.GetDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "First", second[0].Name)
}

func TestDatasetCache_ConcurrentMissesLoadOnce(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(testAffiliates, nil).Once()
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]models.Affiliate, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetDataset(context.Background())
		}(i)
	}

	// callers arriving after the load finishes are served from the store
	<-started
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, testAffiliates, results[i])
	}
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestDatasetCache_InvalidateDuringLoad(t *testing.T) {
	stale := []models.Affiliate{{ID: 1, Name: "Before"}}
	fresh := []models.Affiliate{{ID: 1, Name: "After"}}

	started := make(chan struct{})
	release := make(chan struct{})
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(stale, nil).Once()
	loader.On("Load", mock.Anything).Return(fresh, nil).Once()
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	var wg sync.WaitGroup
	var first []models.Affiliate
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, firstErr = c.GetDataset(context.Background())
	}()

	<-started
	require.NoError(t, c.Invalidate(context.Background()))

	// must not join the load that began before Invalidate
	second, err := c.GetDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, second)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, stale, first)

	cached, ok, err := store.Get(context.Background(), DatasetKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh, cached)

	third, err := c.GetDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, third)
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestDatasetCache_LoadOutlivesCallerContext(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(testAffiliates, nil).Once()
	store, _ := newTestStore()
	c := New(loader, store, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.GetDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAffiliates, result)
	loader.AssertExpectations(t)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]models.Affiliate, bool, error) {
	return nil, false, errors.New("store down")
}

func (brokenStore) Set(context.Context, string, []models.Affiliate, time.Duration) error {
	return errors.New("store down")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("store down")
}

func TestDatasetCache_StoreFailuresFallBackToLoader(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(testAffiliates, nil)
	c := New(loader, brokenStore{}, time.Hour, zerolog.Nop())

	result, err := c.GetDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAffiliates, result)

	assert.Error(t, c.Invalidate(context.Background()))
}
