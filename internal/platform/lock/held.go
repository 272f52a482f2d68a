// Package lock provides DocumentLocker implementations for stores without native row locks.
package lock

import "context"

type heldKey struct{ doc string }

// Held reports whether ctx already owns the lock for doc.
func Held(ctx context.Context, doc string) bool {
	return ctx.Value(heldKey{doc: doc}) != nil
}

// MarkHeld returns a ctx recording ownership of doc, making nested acquisitions re-entrant.
func MarkHeld(ctx context.Context, doc string) context.Context {
	return context.WithValue(ctx, heldKey{doc: doc}, struct{}{})
}
