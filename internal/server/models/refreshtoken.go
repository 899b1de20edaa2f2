package models

import "time"

// RefreshToken is an opaque, persisted token used to obtain new access
// tokens. Tokens are rotated on every refresh.
type RefreshToken struct {
	UserID  string
	Expires time.Time
}
