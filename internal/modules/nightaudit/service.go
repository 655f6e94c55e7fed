// Package nightaudit runs the daily reconciliation sweep: stale arrivals
// become no-shows, late departures are flagged, low stock is reported, draft
// invoices of finished stays are released for payment and cleaned rooms go
// back on sale.
package nightaudit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/notification"
	"resort/internal/repository"
)

type Notifier interface {
	Publish(eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

// Summary counts what a single run changed.
type Summary struct {
	Date             string `json:"date"`
	NoShows          int    `json:"no_shows"`
	OverdueCheckouts int    `json:"overdue_checkouts"`
	LowStockAlerts   int    `json:"low_stock_alerts"`
	InvoicesReleased int    `json:"invoices_released"`
	RoomsReleased    int    `json:"rooms_released"`
}

// Transitions is the number of state changes the run applied. Low-stock
// alerts are reports, not changes.
func (s Summary) Transitions() int {
	return s.NoShows + s.OverdueCheckouts + s.InvoicesReleased + s.RoomsReleased
}

type Service struct {
	store    *repository.Store
	machine  *booking.Machine
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store *repository.Store, machine *booking.Machine, notifier Notifier, log *zap.Logger, now func() time.Time) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, machine: machine, notifier: notifier, log: log, now: now}
}

// Run sweeps the store as of today inside one transaction. Nothing is kept
// when any step fails.
func (s *Service) Run(ctx context.Context, today domain.Date) (*Summary, error) {
	if today.IsZero() {
		return nil, errors.New("night audit: date is required")
	}
	started := s.now()
	sum := &Summary{Date: today.String()}
	var lowStock []domain.Inventory
	var roomChanges []booking.RoomChange

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		stale, err := tx.Bookings.ListPendingArrivingBefore(ctx, today)
		if err != nil {
			return fmt.Errorf("list stale arrivals: %w", err)
		}
		for i := range stale {
			out, err := s.machine.Apply(ctx, tx, &stale[i], booking.EventMarkNoShow, booking.Input{Reason: "night audit"}, domain.SystemActor)
			if err != nil {
				return fmt.Errorf("no-show %s: %w", stale[i].BookingCode, err)
			}
			roomChanges = append(roomChanges, out.Rooms...)
			sum.NoShows++
		}

		late, err := tx.Bookings.ListInHouseDepartingBefore(ctx, today)
		if err != nil {
			return fmt.Errorf("list late departures: %w", err)
		}
		for i := range late {
			out, err := s.machine.Apply(ctx, tx, &late[i], booking.EventMarkOverdue, booking.Input{}, domain.SystemActor)
			if err != nil {
				return fmt.Errorf("overdue %s: %w", late[i].BookingCode, err)
			}
			roomChanges = append(roomChanges, out.Rooms...)
			sum.OverdueCheckouts++
		}

		lowStock, err = s.flagLowStock(ctx, tx, today)
		if err != nil {
			return err
		}
		sum.LowStockAlerts = len(lowStock)

		drafts, err := tx.Invoices.ListDraftForCheckedOut(ctx)
		if err != nil {
			return fmt.Errorf("list draft invoices: %w", err)
		}
		for i := range drafts {
			inv := &drafts[i]
			if err := tx.Invoices.UpdateStatus(ctx, inv.ID, domain.InvoicePendingPayment, nil); err != nil {
				return fmt.Errorf("finalize invoice %s: %w", inv.InvoiceNumber, err)
			}
			err := tx.Audit.Record(ctx, repository.AuditEntry{
				Actor:    domain.SystemActor,
				Action:   domain.AuditFinalizeInvoice,
				Entity:   "invoices",
				RecordID: inv.ID,
				Before:   map[string]any{"status": domain.InvoiceDraft},
				After:    map[string]any{"status": domain.InvoicePendingPayment},
				At:       started.UTC(),
			})
			if err != nil {
				return err
			}
			sum.InvoicesReleased++
		}

		cleaning, err := tx.Rooms.ListByStatus(ctx, domain.RoomCleaning)
		if err != nil {
			return fmt.Errorf("list rooms in cleaning: %w", err)
		}
		for _, room := range cleaning {
			if err := tx.Rooms.MarkCleaned(ctx, room.ID, started.UTC()); err != nil {
				return fmt.Errorf("release room %s: %w", room.RoomNumber, err)
			}
			// an upcoming arrival keeps the room booked
			status, err := s.machine.SyncRoom(ctx, tx, room.ID, today, nil)
			if err != nil {
				return fmt.Errorf("release room %s: %w", room.RoomNumber, err)
			}
			err = tx.Audit.Record(ctx, repository.AuditEntry{
				Actor:    domain.SystemActor,
				Action:   domain.AuditRoomReleased,
				Entity:   "rooms",
				RecordID: room.ID,
				Before:   map[string]any{"status": domain.RoomCleaning},
				After:    map[string]any{"status": status},
				At:       started.UTC(),
			})
			if err != nil {
				return err
			}
			roomChanges = append(roomChanges, booking.RoomChange{RoomID: room.ID, Status: status})
			sum.RoomsReleased++
		}

		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:     domain.SystemActor,
			Action:    domain.AuditNightAudit,
			Entity:    "night_audit",
			After:     sum,
			Reference: "night-audit:" + today.Compact(),
			At:        started.UTC(),
		})
	})
	if err != nil {
		s.log.Error("night audit failed, rolled back", zap.String("date", today.String()), zap.Error(err))
		return nil, err
	}

	for _, item := range lowStock {
		s.notifier.Publish(notification.EventLowStockAlert, item)
	}
	for _, rc := range roomChanges {
		s.notifier.Publish(notification.EventRoomStatusChanged, rc)
	}
	if sum.Transitions() > 0 {
		s.notifier.Publish(notification.EventDashboardUpdate, sum)
	}

	s.log.Info("night audit complete",
		zap.String("date", sum.Date),
		zap.Int("no_shows", sum.NoShows),
		zap.Int("overdue_checkouts", sum.OverdueCheckouts),
		zap.Int("low_stock_alerts", sum.LowStockAlerts),
		zap.Int("invoices_released", sum.InvoicesReleased),
		zap.Int("rooms_released", sum.RoomsReleased),
		zap.Duration("took", s.now().Sub(started)),
	)
	return sum, nil
}

// flagLowStock writes one alert per item per audit date and returns the
// items alerted for the first time today.
func (s *Service) flagLowStock(ctx context.Context, tx *repository.Store, today domain.Date) ([]domain.Inventory, error) {
	items, err := tx.Inventory.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	var alerted []domain.Inventory
	for _, item := range items {
		ref := lowStockRef(item.ID, today)
		seen, err := tx.Audit.ExistsByReference(ctx, ref)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}
		err = tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    domain.SystemActor,
			Action:   domain.AuditLowStockAlert,
			Entity:   "inventory",
			RecordID: item.ID,
			After: map[string]any{
				"item_name":        item.ItemName,
				"quantity_on_hand": item.QuantityOnHand,
				"min_stock_level":  item.MinStockLevel,
			},
			Reference: ref,
			At:        s.now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		alerted = append(alerted, item)
	}
	return alerted, nil
}

func lowStockRef(itemID int64, day domain.Date) string {
	return "low-stock:" + strconv.FormatInt(itemID, 10) + ":" + day.Compact()
}
