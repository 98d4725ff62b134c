// Package intake fornece os adapters HTTP (chi + net/http) do serviço de leads.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (pipeline anti-abuso, envio de leads, throttle) sem net/http
//   - infra: implementações concretas (janela deslizante, dedup, Telegram, CAPTCHA, stats)
//   - intake (este pacote): roteador, middlewares, DTOs e tradução de Outcome para status/headers
//
// Fluxo de POST /api/cost-estimate:
//
//  1. Middlewares: request id + log, recover, headers de segurança, CORS, throttle por IP
//  2. Decodifica e valida o corpo (validator/v10); erro vira 400 Invalid payload
//  3. Chama application.Pipeline.Submit com IP e user-agent da requisição
//  4. Converte domain.Outcome em resposta JSON (e Retry-After em 429)
//
// O binário cmd/leadapi monta os componentes a partir de variáveis de ambiente.
package intake
