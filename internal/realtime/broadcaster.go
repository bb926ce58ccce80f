package realtime

import (
	"context"
	"log/slog"
)

// Notifier delivers an event to every subscribed session of a household over
// one channel. Delivery is best-effort and at-most-once; there is no replay.
type Notifier interface {
	Name() string
	Publish(ctx context.Context, ev Event) error
}

// Broadcaster fans one event out to all registered notifiers. Each channel
// fails independently: an error is logged and the remaining channels still
// run, so a broken push endpoint never silences the websocket room.
type Broadcaster struct {
	notifiers []Notifier
	logger    *slog.Logger
}

func NewBroadcaster(logger *slog.Logger, notifiers ...Notifier) *Broadcaster {
	return &Broadcaster{notifiers: notifiers, logger: logger}
}

// Register adds a channel to the fan-out.
func (b *Broadcaster) Register(n Notifier) {
	b.notifiers = append(b.notifiers, n)
}

// Publish delivers ev on every channel. It never returns an error; fan-out
// runs post-commit and must not affect the triggering request.
func (b *Broadcaster) Publish(ctx context.Context, ev Event) {
	for _, n := range b.notifiers {
		if err := n.Publish(ctx, ev); err != nil {
			b.logger.Error("broadcast", "channel", n.Name(), "event", ev.Name, "household_id", ev.HouseholdID, "error", err)
		}
	}
}
