package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups every repository over one *gorm.DB handle. Inside Transaction
// the callback receives a Store bound to the transaction.
type Store struct {
	db *gorm.DB

	Bookings        *BookingRepository
	Rooms           *RoomRepository
	RoomTypes       *RoomTypeRepository
	CheckIns        *CheckInRepository
	Customers       *CustomerRepository
	Services        *ServiceRepository
	ServiceBookings *ServiceBookingRepository
	Invoices        *InvoiceRepository
	Payments        *PaymentRepository
	OnlinePayments  *OnlinePaymentRepository
	Inventory       *InventoryRepository
	Audit           *AuditRepository
	Sequences       *SequenceRepository
	Users           *UserRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:              db,
		Bookings:        NewBookingRepository(db),
		Rooms:           NewRoomRepository(db),
		RoomTypes:       NewRoomTypeRepository(db),
		CheckIns:        NewCheckInRepository(db),
		Customers:       NewCustomerRepository(db),
		Services:        NewServiceRepository(db),
		ServiceBookings: NewServiceBookingRepository(db),
		Invoices:        NewInvoiceRepository(db),
		Payments:        NewPaymentRepository(db),
		OnlinePayments:  NewOnlinePaymentRepository(db),
		Inventory:       NewInventoryRepository(db),
		Audit:           NewAuditRepository(db),
		Sequences:       NewSequenceRepository(db),
		Users:           NewUserRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
