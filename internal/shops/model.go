package shops

import (
	"time"
)

// Shop represents a shop master entity mirrored from the back-office roster.
type Shop struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kana      string    `json:"kana"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertShop pairs a shop row with upsert behaviour. SetDefaults forces
// hidden=false and role=shop, applied only for shops whose login identity was
// created during the current sync run.
type UpsertShop struct {
	Shop        Shop
	SetDefaults bool
}

// Identity is a login account tied to a shop code.
type Identity struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
