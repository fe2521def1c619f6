package realtime

// LocalizedText carries the human-readable rendering of a message in
// every locale the web client can display.
type LocalizedText struct {
	ES string `json:"es"`
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Message is the single wire shape sent to browser clients: JSON text
// frames, no acks or sequence numbers. Delivery is at-most-once; the
// client reconciles anything safety-critical via a REST fetch.
type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	Text    *LocalizedText `json:"message,omitempty"`
}
