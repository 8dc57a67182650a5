package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugKeyType int

const debugKeyID = debugKeyType(iota)

// EnableDebugMode marks ctx so that the C* methods of any logger log at debug level for it. An
// empty key is replaced by a random one.
func EnableDebugMode(ctx context.Context, key string) context.Context {
	if key == "" {
		key = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugKeyID, key)
}

// IsDebugMode returns whether ctx was marked by EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return DebugKey(ctx) != ""
}

// DebugKey returns the key ctx was marked with, or "".
func DebugKey(ctx context.Context) string {
	if key, ok := ctx.Value(debugKeyID).(string); ok {
		return key
	}
	return ""
}
