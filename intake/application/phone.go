package application

import (
	"unicode"

	"lead-gateway/intake/domain"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion resolve números sem código de país (8 999 ..., 999 ...).
const defaultRegion = "RU"

// NormalizePhone valida o telefone com os metadados do libphonenumber e
// devolve a forma E.164 (+79991234567).
//
// Letras são recusadas antes do parse: a biblioteca converteria "vanity
// numbers" (1-800-FLOWERS) em dígitos.
func NormalizePhone(raw string) (string, error) {
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '(' || r == ')' || r == '-' || unicode.IsSpace(r):
		default:
			return "", domain.ErrInvalidPhone
		}
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", domain.ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
