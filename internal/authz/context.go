package authz

import "context"

type capabilitiesContextKey struct{}

// ContextWithCapabilities stores the resolved capability snapshot in ctx.
func ContextWithCapabilities(ctx context.Context, caps Capabilities) context.Context {
	return context.WithValue(ctx, capabilitiesContextKey{}, caps)
}

// CapabilitiesFromContext extracts the snapshot placed by the
// authorization middleware. Absence yields the all-false zero snapshot,
// keeping downstream checks fail closed.
func CapabilitiesFromContext(ctx context.Context) Capabilities {
	caps, _ := ctx.Value(capabilitiesContextKey{}).(Capabilities)
	return caps
}
