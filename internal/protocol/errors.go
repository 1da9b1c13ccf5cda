package protocol

const (
	// Transport/handshake validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Caller contract violations on step/reset.
	ErrBadAction  = "E_BAD_ACTION"
	ErrBadRequest = "E_BAD_REQUEST"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadAction:       {},
	ErrBadRequest:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
