package apitest

import "context"

type userKey struct{}

func withUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}

func userFrom(ctx context.Context) string {
	email, _ := ctx.Value(userKey{}).(string)
	return email
}
