package contextkeys

type contextKey string

const (
	ActorKey       contextKey = "Actor"
	BearerTokenKey contextKey = "BearerToken"
	RequestIDKey   contextKey = "RequestID"
)
