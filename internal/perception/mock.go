package perception

import "context"

// MockLLMClient is a test double for LLMClient. Tests set the function
// fields to script responses.
type MockLLMClient struct {
	CompleteFunc           func(ctx context.Context, prompt string) (string, error)
	CompleteWithSystemFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Calls records every prompt sent, in order.
	Calls []string
}

func (m *MockLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

func (m *MockLLMClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.Calls = append(m.Calls, userPrompt)
	if m.CompleteWithSystemFunc != nil {
		return m.CompleteWithSystemFunc(ctx, systemPrompt, userPrompt)
	}
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, userPrompt)
	}
	return "", nil
}
