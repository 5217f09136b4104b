package middleware

import (
	"errors"
	"strconv"
	"unicode/utf8"
)

// ValidateMessageContent validates a chat message body.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message is required")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateIssueID parses and validates an issue ID path parameter.
func ValidateIssueID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid issue ID")
	}
	return id, nil
}

// ValidateTitle validates an issue title.
func ValidateTitle(title string) error {
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}
