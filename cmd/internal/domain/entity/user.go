package entity

type User struct {
	ID            int    `gorm:"primaryKey"`
	Subject       string `gorm:"uniqueIndex;not null"` // IdP subject (Cognito sub or local uuid)
	Name          string `gorm:"not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	PasswordHash  string
	EmailVerified bool  `gorm:"not null"`
	CreatedAt     int64 `gorm:"autoCreateTime:milli"`
	UpdatedAt     int64 `gorm:"autoUpdateTime:milli"`
}
