package domain

import "context"

// Channel identifica um destino de mensagens (bot + chat).
type Channel struct {
	Token  string
	ChatID string
}

func (c Channel) Configured() bool { return c.Token != "" && c.ChatID != "" }

type Message struct {
	Channel Channel
	Text    string
}

type DeliveryResult struct {
	OK       bool
	Status   int
	Skipped  bool
	Attempts int
}

// Notifier entrega uma mensagem de texto a um canal externo.
// Implementações devem nunca expor o token do canal em logs.
type Notifier interface {
	Send(ctx context.Context, msg Message) DeliveryResult
}

// SlotPool representa um recurso com capacidade finita (ex: entregas simultâneas).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// SlotUsage expõe a ocupação de um SlotPool.
type SlotUsage interface {
	InFlight() int
	Capacity() int
}
