package domain

// Sequence is the per-prefix, per-day counter behind human-readable codes.
type Sequence struct {
	Prefix string `gorm:"primaryKey;type:varchar(10)"`
	Day    string `gorm:"primaryKey;type:varchar(8)"`
	Value  int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "sequences" }
