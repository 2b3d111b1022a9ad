// Package handoff carries small values between independently mounted pages
// of one browser session. Values live as long as the session does.
package handoff

import "context"

// UploadedFileKey holds the name of the most recently uploaded dataset.
const UploadedFileKey = "uploadedFile"

// Store is a key-value slot scoped to a single browser session.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Backend hands out per-session stores and drops a session's values when the
// session ends.
type Backend interface {
	Session(id string) Store
	Clear(ctx context.Context, id string) error
	Close() error
}
