package application

import (
	"errors"
	"testing"

	"lead-gateway/intake/domain"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+7 (999) 123-45-67": "+79991234567",
		"8 999 123 45 67":    "+79991234567",
		"9991234567":         "+79991234567",
		"8 (495) 123-45-67":  "+74951234567",
		"+1 650-253-0000":    "+16502530000",
	}
	for in, want := range cases {
		got, err := NormalizePhone(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizePhone_Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"12345",
		"+7 999 abc",
		"1-800-FLOWERS",
		"0123456789012",
		"1234567890123456",
		// 15 dígitos que nenhum plano de numeração atribui
		"+999 123456789012",
	} {
		_, err := NormalizePhone(in)
		assert.True(t, errors.Is(err, domain.ErrInvalidPhone), "expected ErrInvalidPhone for %q", in)
	}
}
