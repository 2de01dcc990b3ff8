package relay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/relay"
	"github.com/dmitrijs2005/gophchat/internal/server/relay/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newRelay(t *testing.T) (*relay.Relay, *mocks.MockMessageStore, *mocks.MockDirectory, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMessageStore(ctrl)
	dir := mocks.NewMockDirectory(ctrl)
	r := relay.New(store, dir, logging.Nop(), relay.WithClock(func() time.Time { return fixedNow }))
	return r, store, dir, ctrl
}

func TestSend_PersistsThenDelivers(t *testing.T) {
	r, store, dir, ctrl := newRelay(t)
	session := mocks.NewMockSession(ctrl)

	gomock.InOrder(
		store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m *models.Message) error {
			assert.Equal(t, "bob", m.SenderID)
			assert.Equal(t, "alice", m.ReceiverID)
			assert.Equal(t, "hi", m.Text)
			assert.Equal(t, fixedNow, m.Timestamp)
			m.ID = "m-1"
			return nil
		}),
		dir.EXPECT().Lookup("alice").Return(session, true),
		session.EXPECT().Deliver(relay.EventReceiveMessage, relay.ReceivePayload{From: "bob", To: "alice", Text: "hi"}).Return(nil).Times(1),
	)
	session.EXPECT().ID().Return("s-1").AnyTimes()

	msg, err := r.Send(context.Background(), relay.SendRequest{SenderID: "bob", ReceiverID: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "m-1", msg.ID)
}

func TestSend_ReceiverOfflineStillPersists(t *testing.T) {
	r, store, dir, _ := newRelay(t)

	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	dir.EXPECT().Lookup("alice").Return(nil, false)

	msg, err := r.Send(context.Background(), relay.SendRequest{SenderID: "bob", ReceiverID: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Text)
}

func TestSend_PersistFailureSkipsDelivery(t *testing.T) {
	r, store, dir, _ := newRelay(t)
	boom := errors.New("store unavailable")

	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(boom)
	dir.EXPECT().Lookup(gomock.Any()).Times(0)

	msg, err := r.Send(context.Background(), relay.SendRequest{SenderID: "bob", ReceiverID: "alice", Text: "hi"})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, msg)
}

func TestSend_DeliveryFailureIsSwallowed(t *testing.T) {
	r, store, dir, ctrl := newRelay(t)
	session := mocks.NewMockSession(ctrl)

	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	dir.EXPECT().Lookup("alice").Return(session, true)
	session.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(errors.New("session closed"))
	session.EXPECT().ID().Return("s-1").AnyTimes()

	msg, err := r.Send(context.Background(), relay.SendRequest{SenderID: "bob", ReceiverID: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestSend_ValidationRejectsBeforeStore(t *testing.T) {
	cases := map[string]relay.SendRequest{
		"empty sender":   {ReceiverID: "alice", Text: "hi"},
		"empty receiver": {SenderID: "bob", Text: "hi"},
		"empty text":     {SenderID: "bob", ReceiverID: "alice"},
		"blank text":     {SenderID: "bob", ReceiverID: "alice", Text: "   "},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			r, store, dir, _ := newRelay(t)
			store.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			dir.EXPECT().Lookup(gomock.Any()).Times(0)

			_, err := r.Send(context.Background(), req)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}
