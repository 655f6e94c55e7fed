package repository

import (
	"context"
	"encoding/json"
	"time"

	"resort/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AuditEntry is the input for Record. Before and After are marshalled to JSON.
type AuditEntry struct {
	Actor     domain.Actor
	Action    string
	Entity    string
	RecordID  int64
	Before    any
	After     any
	Reference string
	At        time.Time
}

func (r *AuditRepository) Record(ctx context.Context, e AuditEntry) error {
	oldValues, err := snapshot(e.Before)
	if err != nil {
		return err
	}
	newValues, err := snapshot(e.After)
	if err != nil {
		return err
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := &domain.AuditLog{
		UserID:    e.Actor.Ref(),
		Action:    e.Action,
		Entity:    e.Entity,
		RecordID:  e.RecordID,
		OldValues: oldValues,
		NewValues: newValues,
		Reference: e.Reference,
		CreatedAt: at,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *AuditRepository) ExistsByReference(ctx context.Context, ref string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.AuditLog{}).Where("reference = ?", ref).Count(&n).Error
	return n > 0, err
}

func (r *AuditRepository) ListForRecord(ctx context.Context, entity string, id int64) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := r.db.WithContext(ctx).
		Where("entity = ? AND record_id = ?", entity, id).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *AuditRepository) ListByAction(ctx context.Context, action string) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := r.db.WithContext(ctx).Where("action = ?", action).Order("id").Find(&out).Error
	return out, err
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
