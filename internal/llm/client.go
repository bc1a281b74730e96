// Package llm provides access to the hosted language model in two modes:
// stateless single-shot generation and a stateful multi-turn chat handle.
package llm

import "context"

// Generator issues a single stateless generation call. Classification,
// field resolution, role/roadmap lookup and skill extraction all use this
// mode so their scratch exchanges never pollute conversational memory.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chat is a stateful multi-turn conversation handle. Prior exchanges sent
// through the handle accumulate as context for subsequent calls.
type Chat interface {
	Send(ctx context.Context, message string) (string, error)
}

// Client combines stateless generation with stateful chat creation.
type Client interface {
	Generator

	// NewChat opens a fresh conversation handle with empty history.
	NewChat(ctx context.Context) (Chat, error)
}
