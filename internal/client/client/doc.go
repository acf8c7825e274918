// Package client contains the client-side transports for taskhub.
//
// GRPCClient talks to the taskhub.v1.Session API. It keeps the session
// obtained by Login and attaches it to later calls through a unary
// interceptor, and maps gRPC status codes to the sentinel errors in
// errors.go.
//
// ChatConn is an open real-time channel (direct, project or
// notifications) built on a gorilla/websocket connection.
package client
