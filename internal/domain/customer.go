package domain

import "time"

type Customer struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	CustomerCode  string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"customer_code"`
	FirstName     string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName      string    `gorm:"type:varchar(100)" json:"last_name"`
	Email         string    `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone         string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	LoyaltyPoints int       `gorm:"not null;default:0" json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
