package booking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"resort/internal/domain"
)

func day(n int) domain.Date {
	return domain.NewDate(2025, 6, 1).AddDays(n)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name       string
		a, b, c, d int
		want       bool
	}{
		{"identical", 0, 2, 0, 2, true},
		{"partial tail", 0, 2, 1, 3, true},
		{"contained", 0, 5, 1, 2, true},
		{"touching end", 0, 2, 2, 4, false},
		{"touching start", 2, 4, 0, 2, false},
		{"disjoint", 0, 1, 3, 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(day(tc.a), day(tc.b), day(tc.c), day(tc.d)))
		})
	}
}

// Overlap must agree with a brute-force check over the nights each stay occupies.
func TestOverlaps_MatchesNightSets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		a := rng.Intn(30)
		b := a + 1 + rng.Intn(10)
		c := rng.Intn(30)
		d := c + 1 + rng.Intn(10)

		nights := map[int]bool{}
		for n := a; n < b; n++ {
			nights[n] = true
		}
		shared := false
		for n := c; n < d; n++ {
			if nights[n] {
				shared = true
				break
			}
		}

		got := Overlaps(day(a), day(b), day(c), day(d))
		if !assert.Equal(t, shared, got, "[%d,%d) vs [%d,%d)", a, b, c, d) {
			return
		}
		assert.Equal(t, got, Overlaps(day(c), day(d), day(a), day(b)), "symmetry")
	}
}

func TestAvailable(t *testing.T) {
	existing := []domain.Booking{
		{ID: 1, CheckInDate: day(0), CheckOutDate: day(2), Status: domain.BookingConfirmed},
		{ID: 2, CheckInDate: day(5), CheckOutDate: day(7), Status: domain.BookingCancelled},
		{ID: 3, CheckInDate: day(10), CheckOutDate: day(12), Status: domain.BookingNoShow},
		{ID: 4, CheckInDate: day(20), CheckOutDate: day(22), Status: domain.BookingCheckedOut},
		{ID: 5, CheckInDate: day(30), CheckOutDate: day(32), Status: domain.BookingOverdueCheckout},
	}

	assert.False(t, Available(existing, day(1), day(3), nil))
	assert.True(t, Available(existing, day(2), day(4), nil), "same-day turnover")
	assert.True(t, Available(existing, day(5), day(7), nil), "cancelled releases")
	assert.True(t, Available(existing, day(10), day(12), nil), "no-show releases")
	assert.True(t, Available(existing, day(20), day(22), nil), "checked-out releases")
	assert.False(t, Available(existing, day(31), day(33), nil), "overdue still holds the room")

	self := int64(1)
	assert.True(t, Available(existing, day(0), day(2), &self), "a booking never conflicts with itself")
}
