package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"procurement-receipt-api/config"
	"procurement-receipt-api/models"
)

// PushPayload is the body of one Web Push message.
type PushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// DeliveryJob is one best-effort delivery collected during a transition
// transaction and executed only after that transaction commits. Email is
// optional and used for terminal transitions when the mailer is
// configured.
type DeliveryJob struct {
	RecipientID   int
	RecipientRole string
	Email         string
	Payload       PushPayload
}

// Dispatcher creates in-app notification rows and performs post-commit
// push/email delivery. Delivery failure never fails the transition that
// triggered it.
type Dispatcher struct {
	db     *gorm.DB
	push   *PushSender
	mailer config.MailerConfig
	log    *logrus.Logger
}

func NewDispatcher(db *gorm.DB, push *PushSender, mailer config.MailerConfig, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{db: db, push: push, mailer: mailer, log: log}
}

// Create inserts the in-app notification row inside the caller's
// transaction, so a rolled-back transition leaves no notification behind.
func (d *Dispatcher) Create(tx *gorm.DB, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if err := tx.Create(n).Error; err != nil {
		return Unavailable("failed to create notification", err)
	}
	return nil
}

// DeliverAll runs every job best effort. Push endpoints that report
// permanently gone are pruned by the sender; every other failure is
// logged and ignored.
func (d *Dispatcher) DeliverAll(jobs []DeliveryJob) {
	for _, job := range jobs {
		if d.push != nil {
			d.push.Send(job.RecipientID, job.RecipientRole, job.Payload)
		}
		if job.Email != "" && d.mailer.Enabled() {
			body := fmt.Sprintf("<p>%s</p>", job.Payload.Body)
			if err := d.mailer.Send([]string{job.Email}, job.Payload.Title, body); err != nil {
				d.log.WithError(err).WithField("recipient", job.Email).Warn("notification email failed")
			}
		}
	}
}

// ListForRecipient returns up to 50 newest notifications for an account.
func (d *Dispatcher) ListForRecipient(recipientID int, role string) ([]models.Notification, *Error) {
	var rows []models.Notification
	err := d.db.
		Where("recipient_id = ? AND recipient_role = ?", recipientID, role).
		Order("created_at DESC").
		Limit(50).
		Find(&rows).Error
	if err != nil {
		return nil, Unavailable("failed to load notifications", err)
	}
	return rows, nil
}

// MarkRead flags one notification as read; not-found covers both a
// missing row and a row addressed to someone else.
func (d *Dispatcher) MarkRead(notificationID, recipientID int, role string) *Error {
	res := d.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND recipient_role = ?", notificationID, recipientID, role).
		Update("is_read", true)
	if res.Error != nil {
		return Unavailable("failed to mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification of an account.
func (d *Dispatcher) MarkAllRead(recipientID int, role string) (int64, *Error) {
	res := d.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ? AND is_read = ?", recipientID, role, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, Unavailable("failed to mark notifications read", res.Error)
	}
	return res.RowsAffected, nil
}

// Subscribe stores one push subscription. Re-registering the same
// endpoint is not an error.
func (d *Dispatcher) Subscribe(sub *models.PushSubscription) (created bool, err *Error) {
	if createErr := d.db.Create(sub).Error; createErr != nil {
		if isDuplicateKey(createErr) {
			return false, nil
		}
		return false, Unavailable("failed to save push subscription", createErr)
	}
	return true, nil
}
