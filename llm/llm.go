// Package llm defines the narrow contract this module places on an external
// LLM inference service. Providers live under provider/ and adapt vendor SDKs
// to this interface.
package llm

import (
	"context"

	"github.com/sweetpotato0/docqa/message"
)

// GenerateRequest bundles inputs for a single LLM invocation.
type GenerateRequest struct {
	Messages []*message.Message
	// JSONMode asks the provider to constrain the response to a JSON object
	// where the vendor API supports it. Callers must still validate the
	// output; the flag is a hint, not a guarantee.
	JSONMode bool
}

// GenerateResponse captures the LLM reply.
type GenerateResponse struct {
	Message *message.Message
}

// Client is implemented by every LLM provider. Calls are blocking and must
// honour ctx cancellation; failures are reported as pkg/errors.TransientError
// (network/timeout, retryable) or plain errors for everything else.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// Prompt is a convenience helper building a system+user exchange.
func Prompt(system, user string) []*message.Message {
	msgs := make([]*message.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, message.NewMessage(message.RoleSystem, system))
	}
	msgs = append(msgs, message.NewMessage(message.RoleUser, user))
	return msgs
}
