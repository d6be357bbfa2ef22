package ports

import "context"

// BreachNotifier registers a verified address digest with the breach-data provider
// so future breaches containing it are reported.
type BreachNotifier interface {
	SubscribeHash(ctx context.Context, sha1 string) error
}
