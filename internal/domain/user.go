package domain

import "time"

type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleReceptionist UserRole = "receptionist"
	RoleAccountant   UserRole = "accountant"
)

// User is a staff account. Guests are Customers and never log in here.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name"`
	Role         UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Actor identifies who performed an operation. A zero UserID is the system itself.
type Actor struct {
	UserID int64
	Role   string
}

var SystemActor = Actor{}

func (a Actor) Ref() *int64 {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}
