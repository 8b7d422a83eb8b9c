package account

import "context"

type accountContextKey struct{}

// ContextWithAccount attaches the authenticated account to the context.
func ContextWithAccount(ctx context.Context, acc *Account) context.Context {
	if acc == nil {
		return ctx
	}
	return context.WithValue(ctx, accountContextKey{}, acc)
}

// FromContext extracts the authenticated account, if any. Absence means the
// request is anonymous, not that something failed.
func FromContext(ctx context.Context) (*Account, bool) {
	if ctx == nil {
		return nil, false
	}
	acc, ok := ctx.Value(accountContextKey{}).(*Account)
	if !ok || acc == nil {
		return nil, false
	}
	return acc, true
}
