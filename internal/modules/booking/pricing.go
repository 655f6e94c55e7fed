package booking

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"resort/internal/domain"
	"resort/internal/repository"
)

var defaultDepositRate = decimal.RequireFromString("0.30")

// Pricing turns rates into rounded amounts in the resort currency.
type Pricing struct {
	decimals    int32
	depositRate decimal.Decimal
}

func NewPricing(currencyDecimals int32, depositRate decimal.Decimal) Pricing {
	if depositRate.IsZero() {
		depositRate = defaultDepositRate
	}
	return Pricing{decimals: currencyDecimals, depositRate: depositRate}
}

// Round rounds half away from zero to the currency minor unit.
func (p Pricing) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(p.decimals)
}

// StayTotal is rate × nights.
func (p Pricing) StayTotal(rate decimal.Decimal, checkIn, checkOut domain.Date) (decimal.Decimal, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return decimal.Zero, err
	}
	nights := checkIn.DaysUntil(checkOut)
	if nights < 1 {
		return decimal.Zero, fmt.Errorf("%w: stay must be at least one night", ErrValidation)
	}
	return p.Round(rate.Mul(decimal.NewFromInt(int64(nights)))), nil
}

func (p Pricing) TotalForStay(ctx context.Context, st *repository.Store, roomID int64, checkIn, checkOut domain.Date) (decimal.Decimal, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return decimal.Zero, err
	}
	room, err := st.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return decimal.Zero, notFound(err, "room")
	}
	if room.RoomType == nil {
		return decimal.Zero, fmt.Errorf("%w: room type", ErrNotFound)
	}
	return p.StayTotal(room.RoomType.BasePrice, checkIn, checkOut)
}

// TotalForService prices quantity units of an active service.
func (p Pricing) TotalForService(ctx context.Context, st *repository.Store, serviceID int64, quantity int) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	svc, err := st.Services.GetByID(ctx, serviceID)
	if err != nil {
		return decimal.Zero, notFound(err, "service")
	}
	if !svc.IsActive {
		return decimal.Zero, fmt.Errorf("%w: service is inactive", ErrNotFound)
	}
	return p.Round(svc.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))), nil
}

// Deposit is the amount due up front: a share of the total for cash, the whole
// total when paying through a gateway.
func (p Pricing) Deposit(total decimal.Decimal, method string) decimal.Decimal {
	if method == domain.MethodCash {
		return p.Round(total.Mul(p.depositRate))
	}
	return p.Round(total)
}
