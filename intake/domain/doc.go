// Package domain define contratos e tipos de domínio do pipeline de intake
// (regras de rate limit, submissões, veredictos, entregas e métricas).
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
