package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// PushConfig holds VAPID configuration for the web push channel.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// PushNotifier is the server-push channel: it delivers household events as
// web push messages to every active member's registered subscriptions, for
// clients that cannot hold a websocket open. The payload is the same JSON
// the hub sends.
type PushNotifier struct {
	cfg         PushConfig
	memberships *store.MembershipStore
	subs        *store.PushStore
	logger      *slog.Logger
}

func NewPushNotifier(cfg PushConfig, memberships *store.MembershipStore, subs *store.PushStore, logger *slog.Logger) *PushNotifier {
	return &PushNotifier{cfg: cfg, memberships: memberships, subs: subs, logger: logger}
}

func (p *PushNotifier) Name() string { return "webpush" }

// VAPIDPublicKey returns the public key clients need to subscribe.
func (p *PushNotifier) VAPIDPublicKey() string {
	return p.cfg.VAPIDPublicKey
}

// Publish sends the event to every subscription of every active household
// member. Individual send failures are logged and skipped; expired
// subscriptions are pruned.
func (p *PushNotifier) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	userIDs, err := p.memberships.ListActiveUserIDs(ev.HouseholdID)
	if err != nil {
		return fmt.Errorf("list household members: %w", err)
	}

	for _, userID := range userIDs {
		subs, err := p.subs.ListByUser(userID)
		if err != nil {
			p.logger.Error("list push subscriptions", "user_id", userID, "error", err)
			continue
		}
		for i := range subs {
			if err := p.send(&subs[i], data); err != nil {
				if errors.Is(err, ErrExpired) {
					if derr := p.subs.DeleteByEndpoint(subs[i].Endpoint); derr != nil {
						p.logger.Error("prune expired subscription", "error", derr)
					}
					continue
				}
				p.logger.Error("send push", "user_id", userID, "event", ev.Name, "error", err)
			}
		}
	}
	return nil
}

func (p *PushNotifier) send(sub *model.PushSubscription, data []byte) error {
	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
		Subscriber:      p.cfg.Subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}
