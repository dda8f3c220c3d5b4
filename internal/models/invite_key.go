package models

import "time"

// InviteKey gates access to the service. Keys are opaque random tokens
// generated by cmd/keygen; usage counting is best-effort bookkeeping.
type InviteKey struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	KeyValue  string    `json:"key_value" gorm:"uniqueIndex;not null"`
	Label     string    `json:"label"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	UsedCount int64     `json:"used_count" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}
