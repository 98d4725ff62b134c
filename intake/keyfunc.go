package intake

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc extrai a chave de limitação (IP do cliente) de uma requisição.
type KeyFunc func(r *http.Request) string

// ClientIP devolve o IP do cliente. Com trustXFF usa o primeiro salto de
// X-Forwarded-For; só ligue atrás de um proxy que sobrescreve o header.
func ClientIP(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}
