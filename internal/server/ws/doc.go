// Package ws is the websocket transport of the chat server. Each connection
// becomes a Session with a read loop that dispatches inbound events and a
// write loop that drains a buffered outbound queue.
//
// Frames are JSON text messages shaped as {"event": "...", "data": ...}.
// Inbound events are register_user and send_message. Outbound events are
// receive_message and error.
package ws
