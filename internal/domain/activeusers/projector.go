package activeusers

import (
	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/event"
)

// Projector folds ActiveUsers events into payload variants.
type Projector struct{}

// AggregateType returns the partition type this projector serves.
func (Projector) AggregateType() string { return event.AggregateActiveUsers }

// Project applies one event to the current variant. Unrecognized
// (variant, event type) combinations return the payload unchanged.
func (Projector) Project(p aggregate.Payload, e event.Event) aggregate.Payload {
	switch state := p.(type) {
	case aggregate.Empty:
		if _, ok := e.Payload.(ActiveUsersCreated); ok {
			return ActiveUsers{Users: []ActiveUser{}, TotalCount: 0}
		}
		return p

	case ActiveUsers:
		switch payload := e.Payload.(type) {
		case UserConnected:
			users := make([]ActiveUser, 0, len(state.Users)+1)
			for _, u := range state.Users {
				if u.ConnectionID != payload.ConnectionID {
					users = append(users, u)
				}
			}
			users = append(users, ActiveUser{
				ConnectionID:   payload.ConnectionID,
				Name:           payload.Name,
				ConnectedAt:    payload.ConnectedAt,
				LastActivityAt: payload.ConnectedAt,
			})
			return ActiveUsers{Users: users, TotalCount: len(users)}

		case UserDisconnected:
			users := make([]ActiveUser, 0, len(state.Users))
			for _, u := range state.Users {
				if u.ConnectionID != payload.ConnectionID {
					users = append(users, u)
				}
			}
			return ActiveUsers{Users: users, TotalCount: len(users)}

		case UserNameUpdated:
			users := make([]ActiveUser, len(state.Users))
			copy(users, state.Users)
			if i := state.indexOf(payload.ConnectionID); i >= 0 {
				users[i].Name = payload.Name
				users[i].LastActivityAt = payload.UpdatedAt
			}
			return ActiveUsers{Users: users, TotalCount: len(users)}
		}
		return p

	default:
		return p
	}
}
