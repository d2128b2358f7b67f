package llm

import "context"

type contextKey string

const (
	purposeKey  contextKey = "llm_purpose"
	identityKey contextKey = "llm_identity"
)

// Purpose labels recorded with each call.
const (
	PurposeChat       = "chat"
	PurposeTranscribe = "transcribe"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithIdentity attaches the calling identity for event logging.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom extracts the calling identity from the context.
func IdentityFrom(ctx context.Context) string {
	v, _ := ctx.Value(identityKey).(string)
	return v
}
