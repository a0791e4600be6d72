// Package realtime implements the public chat room over WebSocket.
//
// Each connection is a Client with one read goroutine and one write
// goroutine. Inbound "send_message" events are validated, stamped with the
// server clock, persisted through a MessageStore, and only then handed to a
// Relay, which fans the "receive_message" envelope out to every Client in the
// Registry, the sender included. Invalid events are dropped without closing
// the connection; persistence failures are logged and never broadcast.
package realtime
