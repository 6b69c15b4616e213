package utils

import (
	"strings"
	"unicode/utf8"

	"devdash/pkg/models"
)

// ValidateChatMessage trims text and checks it against the chat limits
func ValidateChatMessage(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", models.ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > models.MaxChatMessageLength {
		return "", models.ErrMessageTooLong
	}
	return trimmed, nil
}

// TruncateRunes returns at most n runes of s
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// ValidUserID rejects ids that could not have come from the users table
func ValidUserID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && len(id) <= 128 && !strings.ContainsAny(id, "/ \t\n")
}
