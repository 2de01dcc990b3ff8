// Package relay persists chat messages and forwards them to the receiver's
// live session when there is one.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// EventReceiveMessage is the event delivered to the receiver.
const EventReceiveMessage = "receive_message"

// SendRequest is one inbound send_message.
type SendRequest struct {
	SenderID   string `json:"senderId" validate:"required,notblank"`
	ReceiverID string `json:"receiverId" validate:"required,notblank"`
	Text       string `json:"message" validate:"required,notblank"`
}

// ReceivePayload is what the receiver's session gets.
type ReceivePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type Relay struct {
	store     MessageStore
	directory Directory
	logger    logging.Logger
	validate  *validator.Validate
	now       func() time.Time
}

type Option func(*Relay)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) { r.now = now }
}

func New(store MessageStore, directory Directory, logger logging.Logger, opts ...Option) *Relay {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	r := &Relay{
		store:     store,
		directory: directory,
		logger:    logger.With("module", "relay"),
		validate:  v,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Send stores the message and then, if the receiver is online, delivers a
// receive_message event to them. Nothing is delivered unless the store
// accepted the message. A failed delivery is logged and otherwise ignored:
// the receiver still finds the message in its history.
func (r *Relay) Send(ctx context.Context, req SendRequest) (*models.Message, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	msg := &models.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		DeletedFor: []string{},
		Timestamp:  r.now().UTC(),
	}

	if err := r.store.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	session, ok := r.directory.Lookup(req.ReceiverID)
	if !ok {
		r.logger.Debug(ctx, "receiver offline", "message_id", msg.ID, "receiver_id", req.ReceiverID)
		return msg, nil
	}

	payload := ReceivePayload{From: req.SenderID, To: req.ReceiverID, Text: req.Text}
	if err := session.Deliver(EventReceiveMessage, payload); err != nil {
		r.logger.Warn(ctx, "live delivery failed", "message_id", msg.ID, "receiver_id", req.ReceiverID,
			"session_id", session.ID(), "error", err)
		return msg, nil
	}

	r.logger.Debug(ctx, "message delivered", "message_id", msg.ID, "session_id", session.ID())
	return msg, nil
}
