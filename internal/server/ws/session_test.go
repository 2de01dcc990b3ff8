package ws

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_DeliverQueuesEnvelope(t *testing.T) {
	s := newSession("s-1", nil, Options{SendBuffer: 2}, logging.Nop())

	require.NoError(t, s.Deliver("receive_message", map[string]string{"text": "hi"}))

	frame := <-s.send
	var env received
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, "receive_message", env.Event)
	assert.JSONEq(t, `{"text":"hi"}`, string(env.Data))
}

func TestSession_FullQueueDoesNotBlock(t *testing.T) {
	s := newSession("s-1", nil, Options{SendBuffer: 1}, logging.Nop())

	require.NoError(t, s.Deliver("a", nil))
	assert.ErrorIs(t, s.Deliver("b", nil), ErrSendQueueFull)
}

func TestSession_DeliverAfterClose(t *testing.T) {
	s := newSession("s-1", nil, Options{SendBuffer: 1}, logging.Nop())

	s.Close()
	s.Close()
	assert.ErrorIs(t, s.Deliver("a", nil), ErrSessionClosed)
	assert.Equal(t, "s-1", s.ID())
}

func TestSession_UnmarshalablePayload(t *testing.T) {
	s := newSession("s-1", nil, Options{SendBuffer: 1}, logging.Nop())
	assert.Error(t, s.Deliver("a", make(chan int)))
}
