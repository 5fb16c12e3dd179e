package httpx

type ctxKey string

// CtxKeyUser holds the resolved domain.User for an authenticated request.
const CtxKeyUser ctxKey = "user"
