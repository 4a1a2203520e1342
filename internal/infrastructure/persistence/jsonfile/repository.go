package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"veg_market/internal/domain/market"
	"veg_market/internal/domain/repository"
)

const (
	backupPrefix     = "vegetable_market_backup_"
	backupTimeLayout = "20060102_150405"
)

// Repository persists the market record as a single JSON document and
// keeps full-copy backup artifacts in a sibling directory.
type Repository struct {
	dataPath  string
	backupDir string
}

func NewRepository(dataPath, backupDir string) (*Repository, error) {
	if dataPath == "" {
		return nil, fmt.Errorf("data path is empty")
	}
	if backupDir == "" {
		backupDir = filepath.Dir(dataPath)
	}
	if dir := filepath.Dir(dataPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &Repository{dataPath: dataPath, backupDir: backupDir}, nil
}

func (r *Repository) Read(ctx context.Context) (repository.Snapshot, error) {
	rec, err := r.readRecord(r.dataPath)
	if err != nil {
		return repository.Snapshot{}, err
	}
	return rec.toSnapshot(), nil
}

func (r *Repository) Write(ctx context.Context, snap repository.Snapshot) error {
	return r.writeRecord(r.dataPath, recordFromSnapshot(snap))
}

func (r *Repository) Backup(ctx context.Context) (string, error) {
	raw, err := os.ReadFile(r.dataPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("nothing to back up: %w", market.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read primary record: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("parse primary record: %w: %v", market.ErrCorruptData, err)
	}
	now := time.Now().UTC()
	rec.BackupDate = &now

	name := backupPrefix + now.Format(backupTimeLayout) + ".json"
	path := filepath.Join(r.backupDir, name)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s%s_%d.json", backupPrefix, now.Format(backupTimeLayout), n)
		path = filepath.Join(r.backupDir, name)
	}
	if err := r.writeRecord(path, rec); err != nil {
		return "", err
	}
	return name, nil
}

func (r *Repository) ReadBackup(ctx context.Context, name string) (repository.Snapshot, error) {
	if name == "" || name != filepath.Base(name) {
		return repository.Snapshot{}, fmt.Errorf("invalid backup name %q: %w", name, market.ErrNotFound)
	}
	rec, err := r.readRecordStrict(filepath.Join(r.backupDir, name))
	if err != nil {
		return repository.Snapshot{}, err
	}
	return rec.toSnapshot(), nil
}

func (r *Repository) Backups(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.backupDir)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	// Names embed the creation timestamp, so reverse lexical order is
	// newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// readRecord treats a missing file as a fresh install.
func (r *Repository) readRecord(path string) (record, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return emptyRecord(), nil
	}
	if err != nil {
		return record{}, fmt.Errorf("read record: %w", err)
	}
	return parseRecord(raw)
}

// readRecordStrict treats a missing file as market.ErrNotFound.
func (r *Repository) readRecordStrict(path string) (record, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return record{}, fmt.Errorf("backup %q: %w", filepath.Base(path), market.ErrNotFound)
	}
	if err != nil {
		return record{}, fmt.Errorf("read record: %w", err)
	}
	return parseRecord(raw)
}

func parseRecord(raw []byte) (record, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, fmt.Errorf("parse record: %w: %v", market.ErrCorruptData, err)
	}
	if rec.Vegetables == nil {
		rec.Vegetables = map[string]vegetableRecord{}
	}
	if rec.Orders == nil {
		rec.Orders = []orderRecord{}
	}
	return rec, nil
}

// writeRecord writes to a temp file in the target directory, syncs and
// renames it over the destination, so a crash mid-write never leaves a
// half-written record behind.
func (r *Repository) writeRecord(path string, rec record) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}
