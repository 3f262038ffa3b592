package session

import (
	"context"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
)

type ctxKey int

const (
	userKey ctxKey = iota + 1
	holderKey
)

func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}

func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

func HolderFromContext(ctx context.Context) (*Holder, bool) {
	h, ok := ctx.Value(holderKey).(*Holder)
	return h, ok && h != nil
}
