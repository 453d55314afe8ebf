package mqtt

import "strings"

// statusSuffix is the topic level carrying the daemon's own state.
const statusSuffix = "status"

// Topics builds the topics used under one destination prefix.
//
//	topics := mqtt.NewTopics("miflora")
//	topics.Sensor("Balcony-Plant") // "miflora/Balcony-Plant"
//	topics.Status()                // "miflora/status"
type Topics struct {
	prefix string
}

// NewTopics creates a Topics for the given destination. Trailing slashes are dropped.
func NewTopics(destination string) Topics {
	return Topics{prefix: strings.TrimRight(destination, "/")}
}

// Sensor returns the topic readings of one device are published to.
func (t Topics) Sensor(deviceID string) string {
	return t.prefix + "/" + deviceID
}

// Status returns the retained daemon status topic.
func (t Topics) Status() string {
	return t.prefix + "/" + statusSuffix
}
