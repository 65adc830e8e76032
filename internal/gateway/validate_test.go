package gateway

import (
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"normal text", "hello moderators", false},
		{"empty allowed", "", false},
		{"whitespace allowed", "   ", false},
		{"at char limit", strings.Repeat("a", MaxContentChars), false},
		{"over char limit", strings.Repeat("a", MaxContentChars+1), true},
		{"over byte limit", strings.Repeat("é", MaxContentBytes), true},
		{"invalid utf8", string([]byte{0xff, 0xfe, 0xfd}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
