package pubsub

// Default channel for identifier lifecycle events.
const ChannelIssued = "qri:issued"

// Event types.
const (
	EventIssued = "qri.issued"
)

// IssuedPayload describes a freshly generated identifier.
type IssuedPayload struct {
	QRI       string `json:"qri"`
	Timestamp string `json:"timestamp"`
	Signed    bool   `json:"signed"`
	KeyID     string `json:"key_id,omitempty"`
}
