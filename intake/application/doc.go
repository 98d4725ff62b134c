// Package application contém os casos de uso do intake: o pipeline anti-abuso
// de pedidos de orçamento (Pipeline) e o envio simples de leads (LeadService).
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Pipeline.Submit(ctx, sub) retorna um domain.Outcome (status + payload).
package application
