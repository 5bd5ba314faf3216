package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/dgraph-io/badger/v4"
)

// BadgerStore — кэш снимков на диске, переживает перезапуск процесса
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ ports.SnapshotCache = (*BadgerStore)(nil)

// OpenBadgerStore открывает хранилище в каталоге dir; пустой dir — in-memory режим
func OpenBadgerStore(dir string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия badger: %w", err)
	}

	logger.Info("badger cache opened", "dir", dir)
	return &BadgerStore{db: db, logger: logger}, nil
}

func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения ключа %s из badger: %w", key, err)
	}
	return value, true, nil
}

func (b *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("ошибка записи ключа %s в badger: %w", key, err)
	}
	return nil
}

// Expire перезаписывает значение с TTL в той же транзакции, что и чтение
func (b *BadgerStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if ttl <= 0 {
			return txn.Delete([]byte(key))
		}
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("ошибка установки TTL ключа %s в badger: %w", key, err)
	}
	return nil
}

func (b *BadgerStore) Close() error {
	if err := b.db.Close(); err != nil {
		b.logger.Error("failed to close badger cache", "error", err)
		return err
	}
	return nil
}
