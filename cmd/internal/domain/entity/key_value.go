package entity

// KeyValue is one durable entry of the key-value table backing reminder
// collections and accessibility settings.
type KeyValue struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     string `gorm:"type:text;not null"`
	WrittenAt int64  `gorm:"not null"`
}
