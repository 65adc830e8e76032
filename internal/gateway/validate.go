package gateway

import (
	"fmt"
	"unicode/utf8"
)

const (
	MaxContentBytes = 4096 // 4KB max submission size
	MaxContentChars = 2000 // max character count
)

// ValidateContent checks that a submission meets size and encoding
// requirements before it is forwarded to the moderator. Blank content is
// deliberately allowed through: the pipeline handles it and reports it in
// the verdict metadata.
func ValidateContent(content string) error {
	if len(content) > MaxContentBytes {
		return fmt.Errorf("content exceeds %d byte limit", MaxContentBytes)
	}
	if utf8.RuneCountInString(content) > MaxContentChars {
		return fmt.Errorf("content exceeds %d character limit", MaxContentChars)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("content contains invalid UTF-8")
	}
	return nil
}
