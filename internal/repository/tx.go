package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Tx exposes the repositories that take part in a report status change.
type Tx struct {
	Reports ReportRepository
	Users   UserRepository
}

// TxManager runs a function inside a single database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager bound to db.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// WithTransaction commits when fn returns nil and rolls back otherwise.
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return m.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, Tx{
			Reports: &reportRepository{db: db},
			Users:   &userRepository{db: db},
		})
	})
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
