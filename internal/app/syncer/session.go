package syncer

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"pwmgr/internal/domain/sync"

	"golang.org/x/exp/slog"
)

// Result итоги одной сессии синхронизации
type Result struct {
	Sent     int           `json:"sent"`
	Received int           `json:"received"`
	Adopted  int           `json:"adopted"`
	Kept     int           `json:"kept"`
	Duration time.Duration `json:"duration"`
}

// session передает пакеты по одному соединению. В полете всегда один пакет,
// поэтому хватает буферизованного writer со сбросом на каждой отправке.
type session struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
	log  *slog.Logger
}

func newSession(conn net.Conn, log *slog.Logger) *session {
	return &session{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
		log:  log.With("peer", conn.RemoteAddr().String()),
	}
}

func (s *session) send(p sync.Packet) error {
	s.log.Debug("send packet", "kind", p.Kind().String())
	return sync.Send(s.w, p)
}

func (s *session) receive() (sync.Packet, error) {
	p, err := sync.Receive(s.r)
	if err != nil {
		return nil, err
	}
	s.log.Debug("received packet", "kind", p.Kind().String())
	return p, nil
}

// abort сообщает собеседнику о прерывании; ошибка записи только логируется
func (s *session) abort(reason string) {
	if err := s.send(sync.Abort{Reason: reason}); err != nil {
		s.log.Warn("failed to send abort", "reason", reason, "error", err)
	}
}

// awaitAck ждет подтверждения только что отправленной записи
func (s *session) awaitAck(id string) error {
	p, err := s.receive()
	if err != nil {
		return err
	}

	switch pk := p.(type) {
	case sync.EntryAck:
		if pk.EntryID != id {
			s.abort("acknowledgement for unexpected entry")
			return fmt.Errorf("%w: ack for %s while waiting for %s", sync.ErrProtocol, pk.EntryID, id)
		}
		if !pk.Accepted {
			s.abort("entry rejected")
			return fmt.Errorf("%w: entry %s: %s", sync.ErrRejected, id, sync.ReasonOf(pk.Reason))
		}
		return nil
	case sync.Abort:
		return fmt.Errorf("%w: %s", sync.ErrPeerAborted, pk.Reason)
	default:
		s.abort(sync.ReasonUnexpected)
		return fmt.Errorf("%w: %s while waiting for EntryAck", sync.ErrUnexpectedPacket, p.Kind())
	}
}
