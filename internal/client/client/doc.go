// Package client talks to the chat server: REST calls over HTTP and the
// live message stream over a websocket.
//
// Failures map to sentinel errors (ErrUnavailable, ErrUnauthorized,
// ErrNotFound and friends) that callers match with errors.Is. The server's
// own message text is kept in the wrapped error.
package client
