package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound signals that the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate signals a unique constraint violation.
	ErrDuplicate = errors.New("duplicate key")
)

// Store groups the repositories that share one database handle. A Store
// built inside Transaction routes every call through the same transaction.
type Store struct {
	db    *gorm.DB
	Users UserRepository
	Links LinkRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		Users: NewUserRepository(db),
		Links: NewLinkRepository(db),
	}
}

// Transaction runs fn against a transaction-scoped Store. The transaction
// commits when fn returns nil and rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
