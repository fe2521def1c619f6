package events

import "strings"

// Match reports whether a subscription pattern matches an event type.
// "*" matches every type, "prefix.*" matches any type beginning with
// "prefix.", and anything else must be an exact match.
func Match(pattern, eventType string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		return strings.HasPrefix(eventType, pattern[:len(pattern)-1])
	}
	return pattern == eventType
}
