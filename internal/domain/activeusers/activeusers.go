// Package activeusers implements the ActiveUsers aggregate: the roster
// of currently connected real-time clients watched by the admin
// console. The aggregate id is configured by the host, not a global.
package activeusers

import "time"

// ActiveUser is one connected client.
type ActiveUser struct {
	ConnectionID   string    `json:"connectionId"`
	Name           string    `json:"name,omitempty"`
	ConnectedAt    time.Time `json:"connectedAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// ActiveUsers is the live variant. TotalCount always equals len(Users)
// and connection ids are unique; the projector maintains both.
type ActiveUsers struct {
	Users      []ActiveUser
	TotalCount int
}

// PayloadName identifies the live variant.
func (ActiveUsers) PayloadName() string { return "ActiveUsers" }

// indexOf returns the position of the connection id, or -1.
func (a ActiveUsers) indexOf(connectionID string) int {
	for i, u := range a.Users {
		if u.ConnectionID == connectionID {
			return i
		}
	}
	return -1
}
