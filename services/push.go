package services

import (
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"procurement-receipt-api/config"
	"procurement-receipt-api/models"
)

// PushSender delivers Web Push messages to every subscription of an
// account. It runs strictly after the triggering transaction committed;
// nothing here can roll a transition back.
type PushSender struct {
	db  *gorm.DB
	cfg config.PushConfig
	log *logrus.Logger
}

// NewPushSender returns nil when push is not configured; a nil sender is
// skipped by the dispatcher.
func NewPushSender(db *gorm.DB, cfg config.PushConfig, log *logrus.Logger) *PushSender {
	if !cfg.Enabled() {
		log.Warn("VAPID keys are not configured, push notifications disabled")
		return nil
	}
	return &PushSender{db: db, cfg: cfg, log: log}
}

// PublicKey exposes the VAPID public key for client subscription.
func (p *PushSender) PublicKey() string { return p.cfg.PublicKey }

// Send pushes the payload to every subscription of the recipient.
// Endpoints answering 410 Gone are pruned from the subscription set;
// other failures are logged and otherwise ignored.
func (p *PushSender) Send(recipientID int, role string, payload PushPayload) {
	var subs []models.PushSubscription
	err := p.db.
		Where("recipient_id = ? AND recipient_role = ?", recipientID, role).
		Find(&subs).Error
	if err != nil {
		p.log.WithError(err).Warn("failed to load push subscriptions")
		return
	}
	if len(subs) == 0 {
		return
	}

	message, err := json.Marshal(payload)
	if err != nil {
		p.log.WithError(err).Warn("failed to encode push payload")
		return
	}

	for _, row := range subs {
		var sub webpush.Subscription
		if err := json.Unmarshal([]byte(row.Subscription), &sub); err != nil {
			p.log.WithError(err).WithField("endpoint", row.Endpoint).Warn("invalid stored subscription, pruning")
			p.prune(row)
			continue
		}

		resp, err := webpush.SendNotification(message, &sub, &webpush.Options{
			Subscriber:      p.cfg.Subject,
			VAPIDPublicKey:  p.cfg.PublicKey,
			VAPIDPrivateKey: p.cfg.PrivateKey,
			TTL:             60,
		})
		if err != nil {
			p.log.WithError(err).WithField("endpoint", row.Endpoint).Warn("push send failed")
			continue
		}
		if resp.StatusCode == http.StatusGone {
			p.prune(row)
		}
		resp.Body.Close()
	}
}

func (p *PushSender) prune(row models.PushSubscription) {
	if err := p.db.Delete(&models.PushSubscription{}, row.ID).Error; err != nil {
		p.log.WithError(err).Warn("failed to prune push subscription")
	}
}
