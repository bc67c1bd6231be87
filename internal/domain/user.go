package domain

import "time"

// User is an account that owns records. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Nickname     *string   `json:"nickname"`
	Avatar       *string   `json:"avatar"`
	Signature    *string   `json:"signature"`
	Email        *string   `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfilePatch carries a partial profile update. Unlike record upserts this is
// patch semantics: only non-nil fields are written.
type ProfilePatch struct {
	Nickname  *string `json:"nickname"`
	Avatar    *string `json:"avatar"`
	Signature *string `json:"signature"`
	Email     *string `json:"email"`
}

// Empty reports whether the patch carries no recognized field.
func (p ProfilePatch) Empty() bool {
	return p.Nickname == nil && p.Avatar == nil && p.Signature == nil && p.Email == nil
}
