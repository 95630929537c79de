// File: internal/infra/push/stub_sender.go
package push

import (
	"context"

	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/domain/ports/adapter"
)

var _ adapter.PushSender = (*StubSender)(nil)

// StubSender logs deliveries instead of calling a provider. It stands in
// for FCM/RuStore until provider credentials are wired; the delivery log
// and dedupe behavior are identical either way.
type StubSender struct {
	log *zerolog.Logger
}

func NewStubSender(logger *zerolog.Logger) *StubSender {
	compLog := logger.With().Str("component", "StubPushSender").Logger()
	return &StubSender{log: &compLog}
}

func (s *StubSender) Send(ctx context.Context, provider, token, title, body string, data map[string]string) error {
	s.log.Info().
		Str("provider", provider).
		Str("token_suffix", tokenSuffix(token)).
		Str("title", title).
		Msg("push delivered (stub)")
	return nil
}

func (s *StubSender) Name() string { return "stub" }

// tokenSuffix keeps full device tokens out of the logs.
func tokenSuffix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return "..." + token[len(token)-8:]
}
