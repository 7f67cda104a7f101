package repository

import "context"

// ISecureStore persists values encrypted at rest. Failures surface as false, never as partial data.
type ISecureStore interface {
	Store(ctx context.Context, key string, value interface{}) bool
	// Get decodes the stored value into out and reports whether it was found intact.
	Get(ctx context.Context, key string, out interface{}) bool
	Delete(ctx context.Context, key string) bool
	Has(ctx context.Context, key string) bool
}
