package inventory

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

// UnreadCount counts the unread messages of userID. Users may read their own
// count; admins may read anyone's.
func (s *Service) UnreadCount(ctx context.Context, sess session.Session, userID string) (int64, error) {
	if !sess.Authenticated() {
		return 0, ErrUnauthorized
	}
	if userID == "" {
		return 0, ErrInvalidInput
	}
	if userID != sess.UserID() && !sess.Can(models.PermReadAnyInbox) {
		return 0, ErrForbidden
	}

	n, err := s.store.Messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, s.backendError("unread_count", err, logrus.Fields{"user_id": userID})
	}
	return n, nil
}

// SendMessage delivers a message from the effective user.
func (s *Service) SendMessage(ctx context.Context, sess session.Session, req models.SendMessageRequest) (*models.Message, error) {
	if err := authorize(sess, models.PermSendMessage); err != nil {
		return nil, err
	}
	req.RecipientID = strings.TrimSpace(req.RecipientID)
	req.Body = strings.TrimSpace(req.Body)

	var violations validation.Violations
	if req.RecipientID == "" {
		violations = append(violations, required("recipient_id")...)
	}
	if req.Body == "" {
		violations = append(violations, required("body")...)
	}
	if len(violations) > 0 {
		return nil, violations
	}

	msg := &models.Message{SenderID: sess.UserID(), RecipientID: req.RecipientID, Body: req.Body}
	if err := s.store.Messages.InsertMessage(ctx, msg); err != nil {
		return nil, s.backendError("send_message", err, logrus.Fields{"recipient_id": req.RecipientID})
	}
	return msg, nil
}

// MarkMessageRead marks one of the effective user's messages as read.
func (s *Service) MarkMessageRead(ctx context.Context, sess session.Session, id string) error {
	if !sess.Authenticated() {
		return ErrUnauthorized
	}
	if err := s.store.Messages.MarkRead(ctx, id, sess.UserID()); err != nil {
		return s.backendError("mark_message_read", err, logrus.Fields{"message_id": id})
	}
	return nil
}
