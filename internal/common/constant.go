package common

// Metadata keys carried by authenticated gRPC calls.
const (
	SessionTokenHeaderName = "session_token"
	UserIDHeaderName       = "user_id"
)

// TokenSize is the number of random bytes behind every issued token value.
const TokenSize = 32
