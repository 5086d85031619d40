package httpserver

import (
	"context"

	"luxestay/internal/app"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func WithSession(ctx context.Context, s *app.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

func SessionFromContext(ctx context.Context) *app.Session {
	v := ctx.Value(ctxKeySession)
	if v == nil {
		return nil
	}
	s, _ := v.(*app.Session)
	return s
}
