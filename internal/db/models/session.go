package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session maps the SHA-256 hash of a cookie token to the serialized principal
// captured at login.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID         string    `bun:"id,pk,type:varchar(24)"`
	TokenHash  string    `bun:"token_hash,notnull,unique"`
	Principal  string    `bun:"principal,type:text,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	LastUsedAt time.Time `bun:"last_used_at,notnull"`
}
