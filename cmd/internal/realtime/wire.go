package realtime

import "encoding/json"

// Wire payloads are opaque structured key-value messages; the gateway does
// not interpret their business meaning beyond decode/acknowledge.

// ackMessage acknowledges one received text payload, echoing it back.
type ackMessage struct {
	Received bool            `json:"received"`
	Echo     json.RawMessage `json:"echo"`
}

// errMessage is the best-effort structured error sent to the peer before a
// connection terminates.
type errMessage struct {
	Error string `json:"error"`
}
