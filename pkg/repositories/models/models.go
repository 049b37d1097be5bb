package models

// FullSync is the latest full cycle state a client published in a match.
// Payload is an encoded full cycle state update.
type FullSync struct {
	MatchID   string `json:"match_id"`
	ClientID  uint32 `json:"client_id"`
	Cycle     uint32 `json:"cycle"`
	Payload   []byte `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}
