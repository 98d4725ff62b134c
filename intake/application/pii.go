package application

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hasher produz hashes com salt do servidor para PII (ip, telefone) e fingerprints.
// Os valores não são reversíveis e podem ir para logs e chaves de memória.
type Hasher struct {
	salt []byte
}

func NewHasher(salt string) Hasher {
	return Hasher{salt: []byte(salt)}
}

func (h Hasher) sum(parts ...string) string {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(mac.Sum(nil))
}

// Hash devolve um identificador curto para logs; string vazia para valor vazio.
func (h Hasher) Hash(value string) string {
	if value == "" {
		return ""
	}
	return h.sum(value)[:16]
}

// Fingerprint identifica uma submissão para dedup: telefone normalizado,
// pacote, área arredondada, andares e ação.
func (h Hasher) Fingerprint(phone, pkg string, area int64, floors int, action string) string {
	return h.sum(phone, pkg, strconv.FormatInt(area, 10), strconv.Itoa(floors), action)
}
