package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateID generates a random ID with prefix
func GenerateID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s", prefix, raw[:12])
}

// GenerateVideoID generates a unique video ID
func GenerateVideoID() string {
	return GenerateID("video")
}

// GenerateSessionID generates a unique session ID
func GenerateSessionID() string {
	return GenerateID("session")
}

// GenerateEntryID generates a unique queue entry ID
func GenerateEntryID() string {
	return GenerateID("entry")
}

// GenerateClientID generates a unique websocket client ID
func GenerateClientID() string {
	return GenerateID("client")
}

// GenerateInstanceID generates a unique service instance ID
func GenerateInstanceID() string {
	return GenerateID("instance")
}

// GenerateStoredName generates a collision-free storage filename that keeps
// the original extension.
func GenerateStoredName(originalName string) string {
	ext := ""
	if idx := strings.LastIndex(originalName, "."); idx >= 0 {
		ext = originalName[idx:]
	}
	return uuid.NewString() + ext
}
