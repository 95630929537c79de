package adapter

import "context"

// PushSender delivers one notification to one device token. Real provider
// integrations (FCM, RuStore) live behind this port; the default
// implementation is a stub that always succeeds.
type PushSender interface {
	Send(ctx context.Context, provider, token, title, body string, data map[string]string) error
	Name() string
}
