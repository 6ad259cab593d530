package apiclient

import (
	"strings"
	"sync"
)

// LoginLocation is where an expired session is sent
const LoginLocation = "/login"

// Navigator is the application's current location and the means to move it
type Navigator interface {
	Location() string
	Navigate(location string)
}

var _ Navigator = (*LocationNavigator)(nil)

// LocationNavigator keeps the location in memory. OnNavigate, if set, runs after every move.
type LocationNavigator struct {
	OnNavigate func(location string)

	mu       sync.Mutex
	location string
	history  []string
}

func NewLocationNavigator(location string) *LocationNavigator {
	return &LocationNavigator{location: location}
}

func (n *LocationNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *LocationNavigator) Navigate(location string) {
	n.mu.Lock()
	n.location = location
	n.history = append(n.history, location)
	onNavigate := n.OnNavigate
	n.mu.Unlock()

	if onNavigate != nil {
		onNavigate(location)
	}
}

// History lists every location navigated to, oldest first
func (n *LocationNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

func isLoginLocation(location string) bool {
	return strings.Contains(location, LoginLocation)
}
