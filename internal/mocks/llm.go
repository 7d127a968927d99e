package mocks

import "context"

// LLMClient is a scriptable stand-in for the language model client.
type LLMClient struct {
	// Reply is returned from Complete when ReplyFn is nil.
	Reply string
	// Err, when set, fails every completion.
	Err error
	// ReplyFn, when set, scripts per-call replies.
	ReplyFn func(system, prompt string) (string, error)

	Calls      int
	LastSystem string
	LastPrompt string
}

func (m *LLMClient) Complete(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	if m.ReplyFn != nil {
		return m.ReplyFn(system, prompt)
	}
	return m.Reply, nil
}
