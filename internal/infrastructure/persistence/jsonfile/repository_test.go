package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veg_market/internal/domain/market"
	"veg_market/internal/domain/repository"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewRepository(filepath.Join(dir, "vegetable_market_data.json"), filepath.Join(dir, "backups"))
	require.NoError(t, err)
	return repo, dir
}

func sampleSnapshot(t *testing.T) repository.Snapshot {
	t.Helper()
	veg, err := market.NewVegetable("tomato", decimal.NewFromInt(10), decimal.NewFromInt(6), 5)
	require.NoError(t, err)

	placedAt := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	order, err := market.NewOrder("ORD-20260820-093000-abc12345", placedAt, []market.LineItem{
		{Name: "tomato", Quantity: 3, UnitPrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6)},
	})
	require.NoError(t, err)

	return repository.Snapshot{
		Vegetables: []market.Vegetable{veg},
		Orders:     []market.Order{order},
	}
}

func TestRead_MissingFileIsFreshInstall(t *testing.T) {
	repo, _ := newTestRepo(t)

	snap, err := repo.Read(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, snap.Vegetables)
	assert.Empty(t, snap.Orders)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	in := sampleSnapshot(t)

	require.NoError(t, repo.Write(ctx, in))
	out, err := repo.Read(ctx)

	require.NoError(t, err)
	require.Len(t, out.Vegetables, 1)
	assert.Equal(t, "tomato", out.Vegetables[0].Name)
	assert.True(t, out.Vegetables[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5, out.Vegetables[0].Stock)

	require.Len(t, out.Orders, 1)
	got := out.Orders[0]
	assert.Equal(t, in.Orders[0].ID(), got.ID())
	assert.True(t, got.PlacedAt().Equal(in.Orders[0].PlacedAt()))
	assert.True(t, got.TotalRevenue().Equal(decimal.NewFromInt(30)))
	assert.True(t, got.TotalProfit().Equal(decimal.NewFromInt(12)))
	require.Len(t, got.Items(), 1)
	assert.Equal(t, "tomato", got.Items()[0].Name)
}

func TestRead_CorruptFile(t *testing.T) {
	repo, dir := newTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vegetable_market_data.json"), []byte("{not json"), 0o644))

	_, err := repo.Read(context.Background())

	assert.ErrorIs(t, err, market.ErrCorruptData)
}

func TestWrite_LeavesNoTempArtifacts(t *testing.T) {
	repo, dir := newTestRepo(t)
	require.NoError(t, repo.Write(context.Background(), sampleSnapshot(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestBackup_NamingAndContent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Write(ctx, sampleSnapshot(t)))

	name, err := repo.Backup(ctx)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "vegetable_market_backup_"))
	assert.True(t, strings.HasSuffix(name, ".json"))

	snap, err := repo.ReadBackup(ctx, name)
	require.NoError(t, err)
	assert.Len(t, snap.Vegetables, 1)
	assert.Len(t, snap.Orders, 1)
}

func TestBackup_WithoutPrimary(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Backup(context.Background())

	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestBackup_SameSecondGetsDistinctNames(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Write(ctx, sampleSnapshot(t)))

	first, err := repo.Backup(ctx)
	require.NoError(t, err)
	second, err := repo.Backup(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestReadBackup_Missing(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.ReadBackup(context.Background(), "vegetable_market_backup_20200101_000000.json")

	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestReadBackup_RejectsPathTraversal(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.ReadBackup(context.Background(), "../vegetable_market_data.json")

	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestBackups_NewestFirst(t *testing.T) {
	repo, dir := newTestRepo(t)
	ctx := context.Background()
	backupDir := filepath.Join(dir, "backups")
	for _, name := range []string{
		"vegetable_market_backup_20260101_000000.json",
		"vegetable_market_backup_20260301_000000.json",
		"vegetable_market_backup_20260201_000000.json",
		"unrelated.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("{}"), 0o644))
	}

	names, err := repo.Backups(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"vegetable_market_backup_20260301_000000.json",
		"vegetable_market_backup_20260201_000000.json",
		"vegetable_market_backup_20260101_000000.json",
	}, names)
}
