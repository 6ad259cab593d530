package auth

import (
	"github.com/jrsteele09/churchai-session/churches"
	"github.com/jrsteele09/churchai-session/users"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo // Repository for user accounts
	Churches churches.Repo  // Repository for churches, looked up by invitation code
}
