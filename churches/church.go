package churches

import (
	"strings"
	"time"
)

// Church is a congregation users can register into. Staff and members join an existing
// church by presenting its invitation code.
type Church struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Denomination   string    `json:"denomination,omitempty"`
	City           string    `json:"city,omitempty"`
	Country        string    `json:"country,omitempty"`
	InvitationCode string    `json:"invitation_code"`
	PastorID       string    `json:"pastor_id,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizeInvitationCode makes invitation code lookups case and whitespace insensitive
func NormalizeInvitationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
