package repository

import (
	"context"
	"fmt"

	"resort/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Code prefixes for human-readable document numbers.
const (
	PrefixBooking        = "BKG"
	PrefixInvoice        = "INV"
	PrefixPayment        = "PAY"
	PrefixServiceBooking = "SRV"
	PrefixCustomer       = "CUS"
)

type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next atomically increments the (prefix, day) counter and returns the new value.
// Run it inside the transaction that persists the coded row so a rollback
// releases nothing visible.
func (r *SequenceRepository) Next(ctx context.Context, prefix string, day domain.Date) (int64, error) {
	seq := domain.Sequence{Prefix: prefix, Day: day.Compact(), Value: 1}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prefix"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("sequences.value + 1")}),
	}).Create(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s/%s: %w", prefix, seq.Day, err)
	}

	var current domain.Sequence
	err = r.db.WithContext(ctx).
		Where("prefix = ? AND day = ?", prefix, seq.Day).
		Take(&current).Error
	if err != nil {
		return 0, fmt.Errorf("read sequence %s/%s: %w", prefix, seq.Day, err)
	}
	return current.Value, nil
}

// NextCode returns a code shaped <PREFIX><yyyyMMdd><3-digit seq>.
func (r *SequenceRepository) NextCode(ctx context.Context, prefix string, day domain.Date) (string, error) {
	n, err := r.Next(ctx, prefix, day)
	if err != nil {
		return "", err
	}
	return FormatCode(prefix, day, n), nil
}

func FormatCode(prefix string, day domain.Date, n int64) string {
	return fmt.Sprintf("%s%s%03d", prefix, day.Compact(), n)
}
