// Package httpapi is the REST surface of the chat server: account
// registration and login, user lookups, conversation history, message
// removal, avatars and the websocket endpoint mount.
package httpapi
