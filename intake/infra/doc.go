// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - SlidingWindow: rate limit multi-janela por chave, em memória
//   - DedupStore: supressão de submissões repetidas por fingerprint
//   - Store: token bucket por IP usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limitar entregas simultâneas
//   - TelegramSender / CaptchaVerifier: clientes HTTP de saída
//   - MemoryStatsStore / RedisStatsStore: contadores de desfecho
package infra
