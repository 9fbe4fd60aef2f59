package relay

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// ErrorClass groups relay failures for logs and metrics.
type ErrorClass string

const (
	ClassNone              ErrorClass = ""
	ClassRateLimited       ErrorClass = "rate_limited"
	ClassBusy              ErrorClass = "busy"
	ClassBlockhashNotFound ErrorClass = "blockhash_not_found"
	ClassTimeout           ErrorClass = "timeout"
	ClassConfig            ErrorClass = "config"
	ClassOther             ErrorClass = "other"
)

// Classify maps an error onto an ErrorClass. HTTP status codes are used when
// the relay sent one; otherwise relays phrase the same failure differently,
// so the message is matched by case-insensitive substrings.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, ErrUnknownService) || errors.Is(err, ErrTipPosition) {
		return ClassConfig
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusTooManyRequests:
			return ClassRateLimited
		case http.StatusBadGateway, http.StatusServiceUnavailable:
			return ClassBusy
		case http.StatusGatewayTimeout:
			return ClassTimeout
		}
	}

	// RPCError renders as a struct dump; match on the relay's message only.
	msg := err.Error()
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		msg = rpcErr.Message
	}
	msg = strings.ToLower(msg)

	switch {
	case containsAny(msg, "deadline exceeded", "timeout"):
		return ClassTimeout
	case containsAny(msg, "rate limit", "rate-limited", "too many requests"):
		return ClassRateLimited
	case containsAny(msg, "server busy", "try again later", "overloaded", "node is behind"):
		return ClassBusy
	case containsAny(msg, "blockhash not found"):
		return ClassBlockhashNotFound
	}
	return ClassOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
