package repository

import "context"

// IOptionStore is the host's persistent key/value option table.
type IOptionStore interface {
	// GetOption returns the stored value and whether the option exists.
	GetOption(ctx context.Context, name string) (string, bool, error)
	// UpdateOption creates or replaces the option.
	UpdateOption(ctx context.Context, name, value string) error
	// DeleteOption removes the option and reports whether it existed.
	DeleteOption(ctx context.Context, name string) (bool, error)
}
