package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain", "test@test.com", false},
		{"mixed case", "newFirefoxAccount@test.com", false},
		{"empty", "", true},
		{"no at sign", "not-an-email", true},
		{"repeated without domain", strings.Repeat("test", 255), true},
		{"over column limit", strings.Repeat("a", 250) + "@test.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmail)
				return
			}
			assert.NoError(t, err)
		})
	}
}
