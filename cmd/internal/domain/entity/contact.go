package entity

type ContactMessage struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Phone     *string
	Subject   string `gorm:"not null"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt int64  `gorm:"autoCreateTime:milli"`
}
