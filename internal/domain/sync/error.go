package sync

import "errors"

// Ошибки протокола синхронизации
var (
	ErrProtocol         = errors.New("protocol error")
	ErrFrameTooLarge    = errors.New("frame too large")
	ErrVersionMismatch  = errors.New("protocol version mismatch")
	ErrRoleMismatch     = errors.New("role mismatch")
	ErrUnexpectedPacket = errors.New("unexpected packet")
	ErrRejected         = errors.New("rejected by peer")
	ErrPeerAborted      = errors.New("aborted by peer")
	ErrConflictDeclined = errors.New("aborted by user")
)
