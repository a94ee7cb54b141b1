package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"vegshop/internal/domain"
)

const (
	inventoryFile = "inventory.json"
	ordersFile    = "orders.json"
	journalFile   = "commit.journal"
	lockFile      = ".lock"
	stagedSuffix  = ".staged"

	lockRetryDelay = 50 * time.Millisecond
)

// journal lists the staged files that make up one commit. Once it is on disk
// the commit is decided and Load finishes it.
type journal struct {
	Files []string `json:"files"`
}

type pendingFile struct {
	name string
	data []byte
}

// File stores the inventory and order history as two JSON documents in one
// directory. Access is serialized in process by a mutex and across processes
// by an exclusive flock on the directory's lock file.
type File struct {
	dir      string
	defaults []domain.InventoryItem
	logger   *zap.Logger

	mu     sync.Mutex
	lock   *flock.Flock
	orders []domain.Order
	loaded bool
}

// NewFile creates dir when missing. defaults is used whenever the inventory
// document is missing or cannot be parsed.
func NewFile(dir string, defaults []domain.InventoryItem, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.PersistenceError("create data dir", err)
	}
	return &File{
		dir:      dir,
		defaults: append([]domain.InventoryItem(nil), defaults...),
		logger:   logger,
		lock:     flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

func (f *File) path(name string) string { return filepath.Join(f.dir, name) }

func (f *File) withLock(ctx context.Context, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ok, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return domain.PersistenceError("lock data dir", err)
	}
	if !ok {
		return domain.PersistenceError("lock data dir", errors.New("lock not acquired"))
	}
	defer func() {
		if err := f.lock.Unlock(); err != nil {
			f.logger.Warn("store: unlock data dir failed", zap.Error(err))
		}
	}()
	return fn()
}

// Load finishes any interrupted commit, then reads both documents.
func (f *File) Load(ctx context.Context) (State, error) {
	var st State
	err := f.withLock(ctx, func() error {
		if err := f.recoverCommit(); err != nil {
			return err
		}
		items, defaulted, err := f.readInventory()
		if err != nil {
			return err
		}
		orders, err := f.readOrders()
		if err != nil {
			return err
		}
		f.orders = orders
		f.loaded = true
		st = State{Items: items, Orders: append([]domain.Order(nil), orders...), Defaulted: defaulted}
		return nil
	})
	if err != nil {
		return State{}, err
	}
	f.logger.Info("store: loaded",
		zap.String("dir", f.dir),
		zap.Int("items", len(st.Items)),
		zap.Int("orders", len(st.Orders)))
	return st, nil
}

func (f *File) SaveInventory(ctx context.Context, items []domain.InventoryItem) error {
	return f.withLock(ctx, func() error {
		data, err := marshalDocument(items)
		if err != nil {
			return domain.PersistenceError("encode inventory", err)
		}
		if err := f.commit([]pendingFile{{name: inventoryFile, data: data}}); err != nil {
			return err
		}
		f.logger.Info("store: inventory saved", zap.Int("items", len(items)))
		return nil
	})
}

// CommitCheckout writes the debited inventory and the extended order history
// as one journaled commit.
func (f *File) CommitCheckout(ctx context.Context, items []domain.InventoryItem, order domain.Order) error {
	return f.withLock(ctx, func() error {
		if !f.loaded {
			orders, err := f.readOrders()
			if err != nil {
				return err
			}
			f.orders = orders
			f.loaded = true
		}
		orders := append(append([]domain.Order(nil), f.orders...), order)

		invData, err := marshalDocument(items)
		if err != nil {
			return domain.PersistenceError("encode inventory", err)
		}
		orderData, err := marshalDocument(orders)
		if err != nil {
			return domain.PersistenceError("encode orders", err)
		}
		if err := f.commit([]pendingFile{
			{name: inventoryFile, data: invData},
			{name: ordersFile, data: orderData},
		}); err != nil {
			return err
		}
		f.orders = orders
		f.logger.Info("store: checkout committed",
			zap.String("order_id", order.ID),
			zap.Int("orders", len(orders)))
		return nil
	})
}

func (f *File) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(f.dir); err != nil {
		return domain.PersistenceError("stat data dir", err)
	}
	return nil
}

// commit stages every file, records the journal, then replaces the targets.
func (f *File) commit(files []pendingFile) error {
	names := make([]string, 0, len(files))
	for _, pf := range files {
		if err := atomic.WriteFile(f.path(pf.name+stagedSuffix), bytes.NewReader(pf.data)); err != nil {
			f.discardStaged()
			return domain.PersistenceError("stage "+pf.name, err)
		}
		names = append(names, pf.name)
	}

	j, err := json.Marshal(journal{Files: names})
	if err != nil {
		f.discardStaged()
		return domain.PersistenceError("encode journal", err)
	}
	if err := atomic.WriteFile(f.path(journalFile), bytes.NewReader(j)); err != nil {
		f.discardStaged()
		return domain.PersistenceError("write journal", err)
	}
	return f.rollForward(names)
}

func (f *File) rollForward(names []string) error {
	for _, name := range names {
		staged := f.path(name + stagedSuffix)
		if _, err := os.Stat(staged); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := atomic.ReplaceFile(staged, f.path(name)); err != nil {
			return domain.PersistenceError("replace "+name, err)
		}
	}
	if err := os.Remove(f.path(journalFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.PersistenceError("remove journal", err)
	}
	return nil
}

// recoverCommit rolls a journaled commit forward. Staged files without a
// journal belong to a commit that never got decided and are dropped.
func (f *File) recoverCommit() error {
	raw, err := os.ReadFile(f.path(journalFile))
	if errors.Is(err, fs.ErrNotExist) {
		f.discardStaged()
		return nil
	}
	if err != nil {
		return domain.PersistenceError("read journal", err)
	}
	var j journal
	if err := json.Unmarshal(raw, &j); err != nil {
		return domain.PersistenceError("decode journal", err)
	}
	f.logger.Warn("store: finishing interrupted commit", zap.Strings("files", j.Files))
	return f.rollForward(j.Files)
}

func (f *File) discardStaged() {
	for _, name := range []string{inventoryFile, ordersFile} {
		if err := os.Remove(f.path(name + stagedSuffix)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("store: discard staged file failed", zap.String("file", name), zap.Error(err))
		}
	}
}

func (f *File) readInventory() ([]domain.InventoryItem, bool, error) {
	raw, err := os.ReadFile(f.path(inventoryFile))
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Info("store: no inventory file, using default catalog")
		return f.defaultItems(), true, nil
	}
	if err != nil {
		return nil, false, domain.PersistenceError("read inventory", err)
	}
	var items []domain.InventoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		f.logger.Warn("store: inventory file unreadable, using default catalog", zap.Error(err))
		return f.defaultItems(), true, nil
	}
	return items, false, nil
}

func (f *File) readOrders() ([]domain.Order, error) {
	raw, err := os.ReadFile(f.path(ordersFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.PersistenceError("read orders", err)
	}
	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, domain.PersistenceError("decode orders", fmt.Errorf("%s: %w", ordersFile, err))
	}
	return orders, nil
}

func (f *File) defaultItems() []domain.InventoryItem {
	return append([]domain.InventoryItem(nil), f.defaults...)
}

func marshalDocument(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}
