package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/KNICEX/stock-monitor/internal/entity"
	"github.com/samber/lo"
)

var (
	ErrDuplicateEntry = errors.New("stock already in watchlist")
	ErrEntryNotFound  = errors.New("stock not in watchlist")
)

// WatchlistRepo 自选股列表存储, 每次修改立即落盘, 监控循环每轮重新读取
type WatchlistRepo interface {
	List(ctx context.Context) ([]entity.WatchEntry, error)
	Find(ctx context.Context, code string) (entity.WatchEntry, error)
	Add(ctx context.Context, entry entity.WatchEntry) error
	// Remove 不存在时什么也不做, removed 为 false
	Remove(ctx context.Context, code string) (removed entity.WatchEntry, ok bool, err error)
	Update(ctx context.Context, code string, upd entity.WatchUpdate) (before, after entity.WatchEntry, err error)
}

type fileWatchlistRepo struct {
	path string
	mu   sync.RWMutex
}

func NewFileWatchlistRepo(path string) WatchlistRepo {
	return &fileWatchlistRepo{
		path: path,
	}
}

func (r *fileWatchlistRepo) List(ctx context.Context) ([]entity.WatchEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

func (r *fileWatchlistRepo) Find(ctx context.Context, code string) (entity.WatchEntry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return entity.WatchEntry{}, err
	}
	entry, ok := lo.Find(entries, func(item entity.WatchEntry) bool {
		return item.Code == code
	})
	if !ok {
		return entity.WatchEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, code)
	}
	return entry, nil
}

func (r *fileWatchlistRepo) Add(ctx context.Context, entry entity.WatchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	if lo.ContainsBy(entries, func(item entity.WatchEntry) bool {
		return item.Code == entry.Code
	}) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.Code)
	}
	return r.save(append(entries, entry))
}

func (r *fileWatchlistRepo) Remove(ctx context.Context, code string) (entity.WatchEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return entity.WatchEntry{}, false, err
	}
	removed, idx, ok := lo.FindIndexOf(entries, func(item entity.WatchEntry) bool {
		return item.Code == code
	})
	if !ok {
		return entity.WatchEntry{}, false, nil
	}
	entries = append(entries[:idx], entries[idx+1:]...)
	if err = r.save(entries); err != nil {
		return entity.WatchEntry{}, false, err
	}
	return removed, true, nil
}

func (r *fileWatchlistRepo) Update(ctx context.Context, code string, upd entity.WatchUpdate) (entity.WatchEntry, entity.WatchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return entity.WatchEntry{}, entity.WatchEntry{}, err
	}
	before, idx, ok := lo.FindIndexOf(entries, func(item entity.WatchEntry) bool {
		return item.Code == code
	})
	if !ok {
		return entity.WatchEntry{}, entity.WatchEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, code)
	}
	after := upd.Apply(before)
	entries[idx] = after
	if err = r.save(entries); err != nil {
		return entity.WatchEntry{}, entity.WatchEntry{}, err
	}
	return before, after, nil
}

// load 调用方需持有锁
func (r *fileWatchlistRepo) load() ([]entity.WatchEntry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []entity.WatchEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read watchlist %s: %w", r.path, err)
	}
	var entries []entity.WatchEntry
	if len(data) == 0 {
		return []entity.WatchEntry{}, nil
	}
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode watchlist %s: %w", r.path, err)
	}
	return entries, nil
}

// save 先写临时文件再 rename, 读方不会看到写了一半的文件
func (r *fileWatchlistRepo) save(entries []entity.WatchEntry) error {
	if entries == nil {
		entries = []entity.WatchEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
