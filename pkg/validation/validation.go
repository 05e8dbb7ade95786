package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// IDRegex validates generated identifier format
	IDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// PageIDRegex validates remote platform page identifiers
	PageIDRegex = regexp.MustCompile(`^[0-9]+$`)
)

// Error marks a failed input rule. Callers that wrap validation
// failures can still be recognized via errors.As.
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

func errorf(format string, args ...interface{}) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// allowedUploadExtensions lists the container formats accepted for upload.
var allowedUploadExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".flv":  true,
	".webm": true,
}

// ValidateID validates a generated identifier (video, entry, session)
func ValidateID(id, fieldName string) error {
	if id == "" {
		return errorf("%s is required", fieldName)
	}
	if len(id) > 100 {
		return errorf("%s is too long (max 100 characters)", fieldName)
	}
	if !IDRegex.MatchString(id) {
		return errorf("invalid %s format", fieldName)
	}
	return nil
}

// ValidateVideoID validates a video ID
func ValidateVideoID(videoID string) error {
	return ValidateID(videoID, "video ID")
}

// ValidateEntryID validates a queue entry ID
func ValidateEntryID(entryID string) error {
	return ValidateID(entryID, "entry ID")
}

// ValidateSessionID validates a session ID
func ValidateSessionID(sessionID string) error {
	return ValidateID(sessionID, "session ID")
}

// ValidateTitle validates a broadcast title
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errorf("title is required")
	}
	if utf8.RuneCountInString(title) > 100 {
		return errorf("title is too long (max 100 characters)")
	}
	if !utf8.ValidString(title) {
		return errorf("title contains invalid characters")
	}
	return nil
}

// ValidateDescription validates a broadcast description
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > 5000 {
		return errorf("description is too long (max 5000 characters)")
	}
	if !utf8.ValidString(description) {
		return errorf("description contains invalid characters")
	}
	return nil
}

// ValidateIngestURL validates the encoder push destination
func ValidateIngestURL(urlStr string) error {
	if urlStr == "" {
		return errorf("ingest URL is required")
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return errorf("invalid ingest URL format: %v", err)
	}
	if u.Scheme != "rtmp" && u.Scheme != "rtmps" {
		return errorf("invalid ingest URL scheme (must be rtmp or rtmps)")
	}
	if u.Host == "" {
		return errorf("ingest URL must have a host")
	}
	return nil
}

// ValidateBitrate validates a bitrate setting given in kbps as a numeric string
func ValidateBitrate(bitrate string) error {
	if bitrate == "" {
		return errorf("bitrate is required")
	}
	kbps, err := strconv.Atoi(bitrate)
	if err != nil {
		return errorf("bitrate must be a whole number of kbps")
	}
	if kbps < 100 {
		return errorf("bitrate must be at least 100 kbps")
	}
	if kbps > 10000 {
		return errorf("bitrate is too high (max 10000 kbps)")
	}
	return nil
}

// ValidateQuality validates quality level
func ValidateQuality(quality string) error {
	validQualities := map[string]bool{
		"480p":  true,
		"720p":  true,
		"1080p": true,
	}
	if !validQualities[quality] {
		return errorf("invalid quality level (must be 480p, 720p, or 1080p)")
	}
	return nil
}

// ValidatePageID validates the remote platform page identifier
func ValidatePageID(pageID string) error {
	if pageID == "" {
		return errorf("page ID is required")
	}
	if len(pageID) > 64 {
		return errorf("page ID is too long (max 64 characters)")
	}
	if !PageIDRegex.MatchString(pageID) {
		return errorf("invalid page ID format")
	}
	return nil
}

// ValidateUploadFilename validates the display name of an uploaded video file
func ValidateUploadFilename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errorf("filename is required")
	}
	if len(name) > 255 {
		return errorf("filename is too long (max 255 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return errorf("filename must not contain path separators")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedUploadExtensions[ext] {
		return errorf("unsupported file extension %q", ext)
	}
	return nil
}

// ValidatePosition validates a queue position
func ValidatePosition(position int) error {
	if position < 0 {
		return errorf("position must not be negative")
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
