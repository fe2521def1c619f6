package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the authenticated identity for one request.
// UserID is empty for anonymous requests; anonymous websocket
// connections are allowed.
type RequestData struct {
	UserID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
