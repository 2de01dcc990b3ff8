package models

import "time"

// RevokedToken marks a bearer token (by its jti) as logged out. Rows are only
// meaningful until ExpiresAt, after which the token is rejected anyway.
type RevokedToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
