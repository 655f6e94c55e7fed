package domain

import "time"

// CheckInRecord tracks one physical occupancy of a room by a booking.
type CheckInRecord struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	BookingID      int64      `gorm:"not null;index" json:"booking_id"`
	RoomID         int64      `gorm:"not null;index" json:"room_id"`
	CheckInTime    time.Time  `gorm:"not null" json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	ActualAdults   int        `json:"actual_adults"`
	ActualChildren int        `json:"actual_children"`
	CheckInBy      *int64     `json:"check_in_by,omitempty"`
	CheckOutBy     *int64     `json:"check_out_by,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (CheckInRecord) TableName() string { return "check_ins" }
