package activeusers

import (
	"time"

	"github.com/askwave/askwave/internal/event"
)

// Event type names for the ActiveUsers aggregate.
const (
	TypeActiveUsersCreated = "ActiveUsersCreated"
	TypeUserConnected      = "UserConnected"
	TypeUserDisconnected   = "UserDisconnected"
	TypeUserNameUpdated    = "UserNameUpdated"
)

// ActiveUsersCreated transitions Empty to an empty roster.
type ActiveUsersCreated struct{}

// EventType returns the wire name.
func (ActiveUsersCreated) EventType() string { return TypeActiveUsersCreated }

// UserConnected adds a connection to the roster. Reconnecting with an
// id already present replaces the previous entry.
type UserConnected struct {
	ConnectionID string    `json:"connectionId"`
	Name         string    `json:"name,omitempty"`
	ConnectedAt  time.Time `json:"connectedAt"`
}

// EventType returns the wire name.
func (UserConnected) EventType() string { return TypeUserConnected }

// UserDisconnected removes a connection from the roster.
type UserDisconnected struct {
	ConnectionID   string    `json:"connectionId"`
	DisconnectedAt time.Time `json:"disconnectedAt"`
}

// EventType returns the wire name.
func (UserDisconnected) EventType() string { return TypeUserDisconnected }

// UserNameUpdated renames a connected user and bumps their activity.
type UserNameUpdated struct {
	ConnectionID string    `json:"connectionId"`
	Name         string    `json:"name"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EventType returns the wire name.
func (UserNameUpdated) EventType() string { return TypeUserNameUpdated }

func init() {
	event.Register(func() event.Payload { return ActiveUsersCreated{} })
	event.Register(func() event.Payload { return UserConnected{} })
	event.Register(func() event.Payload { return UserDisconnected{} })
	event.Register(func() event.Payload { return UserNameUpdated{} })
}
