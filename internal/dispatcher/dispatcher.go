// Package dispatcher tails the committed event stream and turns each
// event into notifications for the right audiences.
//
// It runs as a single consumer goroutine fed by the executor's
// publisher fan-out. Routing is a static table from event type to
// notification name plus audience: administrative events go to the
// admin group, participant-facing events go to the subscriber group
// named by the owning question group's unique code, and responses go
// to both. Dispatch failures are logged and skipped; the stream never
// stalls on one bad event, and clients recover by re-querying.
package dispatcher

import (
	"context"
	"log/slog"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/event"
	"github.com/askwave/askwave/internal/hub"
)

// AggregateLoader replays one partition's current snapshot. The
// dispatcher needs it to resolve a question's audience (question ->
// group -> unique code) for participant-facing events.
type AggregateLoader interface {
	LoadAggregate(ctx context.Context, aggregateType, id string) (aggregate.Aggregate, error)
}

// Notifier delivers one notification to a named subscriber group.
type Notifier interface {
	Notify(groupName string, n hub.Notification)
}

// Dispatcher consumes committed events and notifies audiences.
type Dispatcher struct {
	queue    *eventQueue
	loader   AggregateLoader
	notifier Notifier
}

// New creates a dispatcher over the given lookup source and notifier.
func New(loader AggregateLoader, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		queue:    newEventQueue(),
		loader:   loader,
		notifier: notifier,
	}
}

// Publish enqueues a committed event. It never blocks; the executor
// calls it from its fan-out.
func (d *Dispatcher) Publish(e event.Event) {
	if !d.queue.Enqueue(e) {
		slog.Warn("event dropped: dispatcher stopped",
			"aggregate_type", e.AggregateType,
			"aggregate_id", e.AggregateID,
			"event_type", e.Payload.EventType(),
		)
	}
}

// Pending returns the number of undispatched events.
func (d *Dispatcher) Pending() int { return d.queue.Len() }

// Stop closes the queue; Run drains what remains and returns.
func (d *Dispatcher) Stop() { d.queue.Close() }

// Run consumes the queue until the context is cancelled or Stop is
// called and the queue drains. Call it from exactly one goroutine.
//
// A failed dispatch is logged with the event context and skipped so
// the stream keeps flowing.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("dispatcher starting")

	for {
		e, ok := d.queue.TryDequeue()
		if ok {
			if err := d.dispatch(ctx, e); err != nil {
				slog.Error("dispatch failed",
					"aggregate_type", e.AggregateType,
					"aggregate_id", e.AggregateID,
					"version", e.Version,
					"event_type", e.Payload.EventType(),
					"error", err,
				)
				d.notifier.Notify(hub.AdminGroup, hub.Notification{
					Name:    "Error",
					Payload: map[string]any{"message": err.Error()},
				})
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("dispatcher stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-d.queue.Wait():
			// Wakeups coalesce, so a stale token can fire after a
			// drain. Only a closed and empty queue means shutdown;
			// otherwise loop back and keep consuming.
			if d.queue.Closed() && d.queue.Len() == 0 {
				slog.Info("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, e event.Event) error {
	switch p := e.Payload.(type) {
	case question.QuestionCreated:
		d.notifyAdmins(e, nil)
	case question.QuestionUpdated:
		d.notifyAdmins(e, nil)
	case question.QuestionDeleted:
		d.notifyAdmins(e, nil)

	case question.QuestionDisplayStarted:
		code, err := d.audienceCode(ctx, e.AggregateID)
		if err != nil {
			return err
		}
		d.notifier.Notify(hub.CodeGroup(code), hub.Notification{
			Name:    e.Payload.EventType(),
			Payload: map[string]any{"questionId": e.AggregateID},
		})

	case question.QuestionDisplayStopped:
		code, err := d.audienceCode(ctx, e.AggregateID)
		if err != nil {
			return err
		}
		d.notifier.Notify(hub.CodeGroup(code), hub.Notification{
			Name:    e.Payload.EventType(),
			Payload: map[string]any{"questionId": e.AggregateID},
		})

	case question.ResponseAdded:
		payload := map[string]any{
			"responseId":       p.ResponseID,
			"participantName":  p.ParticipantName,
			"selectedOptionId": p.SelectedOptionID,
			"comment":          p.Comment,
			"timestamp":        p.Timestamp,
			"clientId":         p.ClientID,
		}
		d.notifyAdmins(e, payload)
		code, err := d.audienceCode(ctx, e.AggregateID)
		if err != nil {
			return err
		}
		d.notifier.Notify(hub.CodeGroup(code), hub.Notification{
			Name:    e.Payload.EventType(),
			Payload: withAggregateID(e, payload),
		})

	case group.QuestionGroupCreated:
		d.notifyAdmins(e, map[string]any{"name": p.Name})
	case group.QuestionGroupUpdated:
		d.notifyAdmins(e, map[string]any{"newName": p.NewName})
	case group.QuestionGroupDeleted:
		d.notifyAdmins(e, nil)
	case group.QuestionAddedToGroup:
		d.notifyAdmins(e, map[string]any{"questionId": p.QuestionID, "order": p.Order})
	case group.QuestionRemovedFromGroup:
		d.notifyAdmins(e, map[string]any{"questionId": p.QuestionID})
	case group.QuestionOrderChanged:
		d.notifyAdmins(e, map[string]any{"questionId": p.QuestionID, "newOrder": p.NewOrder})

	case activeusers.ActiveUsersCreated:
		d.notifyAdmins(e, nil)
	case activeusers.UserConnected:
		d.notifyAdmins(e, map[string]any{
			"connectionId": p.ConnectionID,
			"name":         p.Name,
			"connectedAt":  p.ConnectedAt,
		})
	case activeusers.UserDisconnected:
		d.notifyAdmins(e, map[string]any{
			"connectionId":   p.ConnectionID,
			"disconnectedAt": p.DisconnectedAt,
		})
	case activeusers.UserNameUpdated:
		d.notifyAdmins(e, map[string]any{
			"connectionId": p.ConnectionID,
			"name":         p.Name,
			"updatedAt":    p.UpdatedAt,
		})

	default:
		// New event types flow through the log untouched until a
		// route is added for them.
		slog.Debug("no notification route for event",
			"event_type", e.Payload.EventType(),
		)
	}
	return nil
}

// notifyAdmins sends the event's notification to the admin group. The
// payload always carries the aggregate id.
func (d *Dispatcher) notifyAdmins(e event.Event, payload map[string]any) {
	d.notifier.Notify(hub.AdminGroup, hub.Notification{
		Name:    e.Payload.EventType(),
		Payload: withAggregateID(e, payload),
	})
}

// audienceCode resolves the unique code of the group owning a
// question by replaying the question and its group.
func (d *Dispatcher) audienceCode(ctx context.Context, questionID string) (string, error) {
	qAgg, err := d.loader.LoadAggregate(ctx, event.AggregateQuestion, questionID)
	if err != nil {
		return "", err
	}
	q, ok := qAgg.Payload.(question.Question)
	if !ok {
		return "", domainLookupError("question", questionID)
	}

	gAgg, err := d.loader.LoadAggregate(ctx, event.AggregateQuestionGroup, q.QuestionGroupID)
	if err != nil {
		return "", err
	}
	g, ok := gAgg.Payload.(group.QuestionGroup)
	if !ok {
		return "", domainLookupError("question group", q.QuestionGroupID)
	}
	return g.UniqueCode, nil
}

func domainLookupError(kind, id string) error {
	return domain.NewNotFoundError("%s %s is not live", kind, id)
}

func withAggregateID(e event.Event, payload map[string]any) map[string]any {
	out := map[string]any{"aggregateId": e.AggregateID}
	for k, v := range payload {
		out[k] = v
	}
	return out
}
