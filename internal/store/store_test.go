package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veg_market/internal/domain/market"
	"veg_market/internal/domain/repository"
	"veg_market/internal/infrastructure/persistence/jsonfile"
)

// MockPersistence is a mock for repository.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Read(ctx context.Context) (repository.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.Snapshot), args.Error(1)
}

func (m *MockPersistence) Write(ctx context.Context, snap repository.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockPersistence) Backup(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPersistence) ReadBackup(ctx context.Context, name string) (repository.Snapshot, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(repository.Snapshot), args.Error(1)
}

func (m *MockPersistence) Backups(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newFileStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	repo, err := jsonfile.NewRepository(filepath.Join(dir, "data.json"), filepath.Join(dir, "backups"))
	require.NoError(t, err)
	return New(repo)
}

func mustVegetable(t *testing.T, name string, price, cost int64, stock int) market.Vegetable {
	t.Helper()
	veg, err := market.NewVegetable(name, decimal.NewFromInt(price), decimal.NewFromInt(cost), stock)
	require.NoError(t, err)
	return veg
}

func addVegetable(t *testing.T, st *Store, veg market.Vegetable) {
	t.Helper()
	require.NoError(t, st.Mutate(context.Background(), func(s *State) error {
		s.Catalog[veg.Name] = veg
		return nil
	}))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := jsonfile.NewRepository(filepath.Join(dir, "data.json"), filepath.Join(dir, "backups"))
	require.NoError(t, err)

	first := New(repo)
	addVegetable(t, first, mustVegetable(t, "tomato", 10, 6, 5))
	placedAt := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	order, err := market.NewOrder(market.NewOrderID(placedAt), placedAt, []market.LineItem{
		{Name: "tomato", Quantity: 2, UnitPrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6)},
	})
	require.NoError(t, err)
	require.NoError(t, first.Mutate(ctx, func(s *State) error {
		s.Orders = append(s.Orders, order)
		return nil
	}))

	// A second store over the same file sees the identical state.
	second := New(repo)
	require.NoError(t, second.Load(ctx))
	second.View(func(s State) {
		require.Len(t, s.Catalog, 1)
		assert.Equal(t, 5, s.Catalog["tomato"].Stock)
		require.Len(t, s.Orders, 1)
		assert.Equal(t, order.ID(), s.Orders[0].ID())
		assert.True(t, s.Orders[0].TotalRevenue().Equal(decimal.NewFromInt(20)))
	})
}

func TestStore_MutateRollsBackOnError(t *testing.T) {
	st := newFileStore(t)
	addVegetable(t, st, mustVegetable(t, "tomato", 10, 6, 5))

	boom := errors.New("boom")
	err := st.Mutate(context.Background(), func(s *State) error {
		veg := s.Catalog["tomato"]
		veg.Stock = 0
		s.Catalog["tomato"] = veg
		return boom
	})

	assert.ErrorIs(t, err, boom)
	st.View(func(s State) {
		assert.Equal(t, 5, s.Catalog["tomato"].Stock)
	})
}

func TestStore_MutateRollsBackOnWriteFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	persistence := new(MockPersistence)
	st := New(persistence)

	writeErr := errors.New("disk full")
	persistence.On("Write", ctx, mock.Anything).Return(writeErr).Once()

	// Act
	err := st.Mutate(ctx, func(s *State) error {
		s.Catalog["tomato"] = mustVegetable(t, "tomato", 10, 6, 5)
		return nil
	})

	// Assert
	assert.ErrorIs(t, err, writeErr)
	st.View(func(s State) {
		assert.Empty(t, s.Catalog)
	})
	persistence.AssertExpectations(t)
}

func TestStore_LoadCorruptLeavesStateUntouched(t *testing.T) {
	// Arrange
	ctx := context.Background()
	persistence := new(MockPersistence)
	st := New(persistence)

	persistence.On("Write", ctx, mock.Anything).Return(nil).Once()
	require.NoError(t, st.Mutate(ctx, func(s *State) error {
		s.Catalog["tomato"] = mustVegetable(t, "tomato", 10, 6, 5)
		return nil
	}))
	persistence.On("Read", ctx).
		Return(repository.Snapshot{}, market.ErrCorruptData).Once()

	// Act
	err := st.Load(ctx)

	// Assert
	assert.ErrorIs(t, err, market.ErrCorruptData)
	st.View(func(s State) {
		assert.Equal(t, 5, s.Catalog["tomato"].Stock)
	})
	persistence.AssertExpectations(t)
}

func TestStore_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)
	addVegetable(t, st, mustVegetable(t, "tomato", 10, 6, 5))

	name, err := st.Backup(ctx)
	require.NoError(t, err)

	// Mutate past the backup point, then restore.
	require.NoError(t, st.Mutate(ctx, func(s *State) error {
		delete(s.Catalog, "tomato")
		return nil
	}))
	st.View(func(s State) { assert.Empty(t, s.Catalog) })

	require.NoError(t, st.Restore(ctx, name))
	st.View(func(s State) {
		assert.Equal(t, 5, s.Catalog["tomato"].Stock)
	})
}

func TestStore_RestoreMissingBackup(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)
	addVegetable(t, st, mustVegetable(t, "tomato", 10, 6, 5))

	err := st.Restore(ctx, "vegetable_market_backup_19990101_000000.json")

	assert.ErrorIs(t, err, market.ErrNotFound)
	st.View(func(s State) {
		assert.Equal(t, 5, s.Catalog["tomato"].Stock, "failed restore must not touch state")
	})
}

func TestStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)
	addVegetable(t, st, mustVegetable(t, "tomato", 10, 6, 5))

	require.NoError(t, st.ClearAll(ctx))

	st.View(func(s State) {
		assert.Empty(t, s.Catalog)
		assert.Empty(t, s.Orders)
	})

	// The persisted record reflects the cleared state too.
	require.NoError(t, st.Load(ctx))
	st.View(func(s State) {
		assert.Empty(t, s.Catalog)
		assert.Empty(t, s.Orders)
	})
}
