package topic

import "strings"

// Parse reads either topic layout. Topics with a queue segment in the
// fifth to last position are geo topics, everything else is flat.
func Parse(s string) (Topic, error) {
	if isGeo(s) {
		return ParseGeo(s)
	}
	return ParseV2X(s)
}

func isGeo(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) < 5 {
		return false
	}
	_, err := ParseQueue(parts[len(parts)-4])
	return err == nil
}
