package repository

import (
	"context"
	"time"

	"resort/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).Preload("RoomType").First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

// GetForUpdate row-locks the room so concurrent assignments serialize on it.
// SQLite ignores the locking clause; callers also hold the per-room lock.
func (r *RoomRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *RoomRepository) List(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	q := r.db.WithContext(ctx).Preload("RoomType").Order("room_number")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Room
	err := q.Find(&out).Error
	return out, err
}

func (r *RoomRepository) SetStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoomRepository) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	var out []domain.Room
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&out).Error
	return out, err
}

// MarkCleaned returns a room to service.
func (r *RoomRepository) MarkCleaned(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Updates(map[string]any{
		"status":       domain.RoomAvailable,
		"last_cleaned": at,
	}).Error
}

type RoomTypeRepository struct {
	db *gorm.DB
}

func NewRoomTypeRepository(db *gorm.DB) *RoomTypeRepository {
	return &RoomTypeRepository{db: db}
}

func (r *RoomTypeRepository) Create(ctx context.Context, rt *domain.RoomType) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *RoomTypeRepository) GetByID(ctx context.Context, id int64) (*domain.RoomType, error) {
	var rt domain.RoomType
	if err := r.db.WithContext(ctx).First(&rt, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

func (r *RoomTypeRepository) List(ctx context.Context) ([]domain.RoomType, error) {
	var out []domain.RoomType
	err := r.db.WithContext(ctx).Order("type_name").Find(&out).Error
	return out, err
}
