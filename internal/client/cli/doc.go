// Package cli provides the interactive chat command-line client.
//
// It wires configuration, the API client and an interactive REPL. After
// login the websocket stays open and incoming messages are printed as they
// arrive, between prompts.
//
// Commands:
//   - register / login / logout
//   - users: table of everyone else
//   - history <peerId>, send <peerId> <text>
//   - avatar <file>: upload a profile picture
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
