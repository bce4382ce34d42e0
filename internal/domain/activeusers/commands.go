package activeusers

import (
	"time"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
)

// live unwraps the live variant.
func live(agg aggregate.Aggregate) (ActiveUsers, error) {
	if state, ok := agg.Payload.(ActiveUsers); ok {
		return state, nil
	}
	return ActiveUsers{}, domain.NewNotFoundError("active users aggregate %s not found", agg.ID)
}

// commandTime resolves an injectable clock.
func commandTime(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

// CreateActiveUsers initializes the roster for a configured id.
// Creating an aggregate that already exists is an accepted no-op, so
// lazy creation on first connection is idempotent.
type CreateActiveUsers struct {
	ActiveUsersID string
}

// AggregateType targets the ActiveUsers partition space.
func (CreateActiveUsers) AggregateType() string { return event.AggregateActiveUsers }

// AggregateID returns the configured roster id.
func (c CreateActiveUsers) AggregateID() string { return c.ActiveUsersID }

// Handle emits the create event only when the aggregate is empty.
func (c CreateActiveUsers) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	if c.ActiveUsersID == "" {
		return nil, domain.NewValidationError("active users id is required")
	}
	if !agg.IsEmpty() {
		return nil, nil
	}
	return ActiveUsersCreated{}, nil
}

// UserConnectedCommand records a new client connection.
type UserConnectedCommand struct {
	ActiveUsersID string
	ConnectionID  string
	Name          string

	Now func() time.Time
}

// AggregateType targets the ActiveUsers partition space.
func (UserConnectedCommand) AggregateType() string { return event.AggregateActiveUsers }

// AggregateID returns the configured roster id.
func (c UserConnectedCommand) AggregateID() string { return c.ActiveUsersID }

// Handle emits UserConnected; reconnecting an id already on the roster
// is allowed and replaces the entry on fold.
func (c UserConnectedCommand) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	if _, err := live(agg); err != nil {
		return nil, err
	}
	if c.ConnectionID == "" {
		return nil, domain.NewValidationError("connection id is required")
	}
	return UserConnected{
		ConnectionID: c.ConnectionID,
		Name:         c.Name,
		ConnectedAt:  commandTime(c.Now),
	}, nil
}

// UserDisconnectedCommand records a client disconnect. Disconnecting an
// unknown connection is an accepted no-op so transport retries stay
// harmless.
type UserDisconnectedCommand struct {
	ActiveUsersID string
	ConnectionID  string

	Now func() time.Time
}

// AggregateType targets the ActiveUsers partition space.
func (UserDisconnectedCommand) AggregateType() string { return event.AggregateActiveUsers }

// AggregateID returns the configured roster id.
func (c UserDisconnectedCommand) AggregateID() string { return c.ActiveUsersID }

// Handle emits UserDisconnected for known connections.
func (c UserDisconnectedCommand) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if state.indexOf(c.ConnectionID) < 0 {
		return nil, nil
	}
	return UserDisconnected{
		ConnectionID:   c.ConnectionID,
		DisconnectedAt: commandTime(c.Now),
	}, nil
}

// UpdateUserName renames a connected user.
type UpdateUserName struct {
	ActiveUsersID string
	ConnectionID  string
	Name          string

	Now func() time.Time
}

// AggregateType targets the ActiveUsers partition space.
func (UpdateUserName) AggregateType() string { return event.AggregateActiveUsers }

// AggregateID returns the configured roster id.
func (c UpdateUserName) AggregateID() string { return c.ActiveUsersID }

// Handle rejects renames of connections not on the roster.
func (c UpdateUserName) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if state.indexOf(c.ConnectionID) < 0 {
		return nil, domain.NewNotFoundError("connection %s is not on the roster", c.ConnectionID)
	}
	return UserNameUpdated{
		ConnectionID: c.ConnectionID,
		Name:         c.Name,
		UpdatedAt:    commandTime(c.Now),
	}, nil
}
