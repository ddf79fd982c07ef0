// Package realtime owns globchat's live-connection machinery: the presence
// registry tracking which identities currently hold an open connection, and
// the websocket gateway driving each connection through an explicit
// Upgrading → Open → Closing → Closed lifecycle.
//
// Presence is advisory, in-memory state: it is lost on restart and a
// crashed connection may leave a stale entry until then. Correctness of the
// registry (no leaked entries on any normal exit path) matters more than
// read throughput, so one mutex guards both read and write paths.
package realtime
