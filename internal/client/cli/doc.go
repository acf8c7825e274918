// Package cli provides the interactive taskhub command-line client.
//
// It wires configuration, the gRPC API client and the real-time channels
// into a REPL: account registration and confirmation, password reset,
// login and logout, unread counts and history, and live chat over the
// direct, project and notification channels.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
