package session

import "github.com/jrsteele09/churchai-session/users"

// State is a point-in-time copy of the session
type State struct {
	User        *users.Profile
	AccessToken string
	IsLoading   bool // true until Hydrate has finished
}

func (s State) IsAuthenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
