package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/repository"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
)

// Service manages the reference data bookings are made against. Room status
// is owned by the booking lifecycle and night audit, so rooms are only created here.
type Service struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func NewService(store *repository.Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

/* ---------- ROOM TYPES ---------- */

func (s *Service) ListRoomTypes(ctx context.Context) ([]domain.RoomType, error) {
	out, err := s.store.RoomTypes.List(ctx)
	if out == nil && err == nil {
		out = []domain.RoomType{}
	}
	return out, err
}

func (s *Service) CreateRoomType(ctx context.Context, req CreateRoomTypeRequest, actor domain.Actor) (*domain.RoomType, error) {
	rt := &domain.RoomType{
		TypeName:     strings.TrimSpace(req.TypeName),
		Description:  req.Description,
		BasePrice:    req.BasePrice,
		MaxOccupancy: req.MaxOccupancy,
		Amenities:    req.Amenities,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.RoomTypes.Create(ctx, rt); err != nil {
			return conflict(err, "room type "+rt.TypeName)
		}
		return s.audit(ctx, tx, actor, "room_types", rt.ID, rt)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("room type created", zap.String("name", rt.TypeName), zap.String("base_price", rt.BasePrice.String()))
	return rt, nil
}

/* ---------- ROOMS ---------- */

func (s *Service) ListRooms(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	out, err := s.store.Rooms.List(ctx, status)
	if out == nil && err == nil {
		out = []domain.Room{}
	}
	return out, err
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.store.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "room")
	}
	return room, nil
}

// CreateRoom adds a room in service, or parked in maintenance.
func (s *Service) CreateRoom(ctx context.Context, req CreateRoomRequest, actor domain.Actor) (*domain.Room, error) {
	status := req.Status
	if status == "" {
		status = domain.RoomAvailable
	}
	if status != domain.RoomAvailable && status != domain.RoomMaintenance {
		return nil, fmt.Errorf("%w: new rooms must be available or maintenance", ErrValidation)
	}

	room := &domain.Room{
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		RoomTypeID: req.RoomTypeID,
		Floor:      req.Floor,
		Status:     status,
		Notes:      req.Notes,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		rt, err := tx.RoomTypes.GetByID(ctx, req.RoomTypeID)
		if err != nil {
			return notFound(err, "room type")
		}
		if err := tx.Rooms.Create(ctx, room); err != nil {
			return conflict(err, "room "+room.RoomNumber)
		}
		room.RoomType = rt
		return s.audit(ctx, tx, actor, "rooms", room.ID, room)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("room created", zap.String("number", room.RoomNumber), zap.String("status", string(room.Status)))
	return room, nil
}

/* ---------- CUSTOMERS ---------- */

func (s *Service) ListCustomers(ctx context.Context, search string, limit int) ([]domain.Customer, error) {
	out, err := s.store.Customers.List(ctx, search, limit)
	if out == nil && err == nil {
		out = []domain.Customer{}
	}
	return out, err
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.store.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	return c, nil
}

// CreateCustomer registers a walk-in guest. An email already on file is a conflict.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest, actor domain.Actor) (*domain.Customer, error) {
	c := &domain.Customer{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if c.Email != "" {
			_, err := tx.Customers.FindByEmail(ctx, c.Email)
			switch {
			case err == nil:
				return fmt.Errorf("%w: customer with email %s", ErrConflict, c.Email)
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}
		code, err := tx.Sequences.NextCode(ctx, repository.PrefixCustomer, domain.DateOf(s.now().In(s.loc)))
		if err != nil {
			return fmt.Errorf("allocate customer code: %w", err)
		}
		c.CustomerCode = code
		if err := tx.Customers.Create(ctx, c); err != nil {
			return conflict(err, "customer "+code)
		}
		return s.audit(ctx, tx, actor, "customers", c.ID, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

/* ---------- SERVICES ---------- */

func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	out, err := s.store.Services.List(ctx, activeOnly)
	if out == nil && err == nil {
		out = []domain.Service{}
	}
	return out, err
}

func (s *Service) CreateService(ctx context.Context, req CreateServiceRequest, actor domain.Actor) (*domain.Service, error) {
	svc := &domain.Service{
		ServiceCode: strings.ToUpper(strings.TrimSpace(req.ServiceCode)),
		ServiceName: strings.TrimSpace(req.ServiceName),
		Category:    req.Category,
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
		IsActive:    true,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Services.Create(ctx, svc); err != nil {
			return conflict(err, "service "+svc.ServiceCode)
		}
		return s.audit(ctx, tx, actor, "services", svc.ID, svc)
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

/* ---------- INVENTORY ---------- */

func (s *Service) ListInventory(ctx context.Context, lowStockOnly bool) ([]domain.Inventory, error) {
	var (
		out []domain.Inventory
		err error
	)
	if lowStockOnly {
		out, err = s.store.Inventory.ListLowStock(ctx)
	} else {
		out, err = s.store.Inventory.List(ctx)
	}
	if out == nil && err == nil {
		out = []domain.Inventory{}
	}
	return out, err
}

func (s *Service) CreateInventory(ctx context.Context, req CreateInventoryRequest, actor domain.Actor) (*domain.Inventory, error) {
	item := &domain.Inventory{
		ItemName:       strings.TrimSpace(req.ItemName),
		Warehouse:      req.Warehouse,
		QuantityOnHand: req.QuantityOnHand,
		MinStockLevel:  domain.DefaultMinStockLevel,
		UnitCost:       req.UnitCost,
	}
	if req.MinStockLevel != nil {
		item.MinStockLevel = *req.MinStockLevel
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Inventory.Create(ctx, item); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, "inventory", item.ID, item)
	})
	if err != nil {
		return nil, err
	}
	if item.IsLowStock() {
		s.log.Warn("inventory item created below minimum", zap.String("item", item.ItemName), zap.Int("on_hand", item.QuantityOnHand))
	}
	return item, nil
}

func (s *Service) audit(ctx context.Context, tx *repository.Store, actor domain.Actor, entity string, id int64, after any) error {
	return tx.Audit.Record(ctx, repository.AuditEntry{
		Actor:    actor,
		Action:   domain.AuditCreate,
		Entity:   entity,
		RecordID: id,
		After:    after,
		At:       s.now().UTC(),
	})
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func conflict(err error, what string) error {
	if repository.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}
