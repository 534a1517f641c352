package message

import "strings"

// maxTextLength caps a single chat message.
const maxTextLength = 2000

// NormalizeText trims the message body and reports whether it is sendable.
func NormalizeText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxTextLength {
		return "", false
	}
	return text, true
}
