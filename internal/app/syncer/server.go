package syncer

import (
	"context"
	"fmt"
	"net"
	"time"

	"pwmgr/internal/domain/sync"
	"pwmgr/internal/infrastructure/storage"

	"golang.org/x/exp/slog"
)

// Server принимающая сторона синхронизации; за один вызов обслуживает ровно одного клиента
type Server struct {
	store storage.Store
	log   *slog.Logger
}

// NewServer создает сервер синхронизации поверх хранилища store
func NewServer(store storage.Store, log *slog.Logger) *Server {
	return &Server{
		store: store,
		log:   log.With("component", "sync_server"),
	}
}

// RunServer слушает addr и проводит одну сессию
func RunServer(ctx context.Context, addr string, store storage.Store, log *slog.Logger) (*Result, error) {
	return NewServer(store, log).ListenAndServe(ctx, addr)
}

// ListenAndServe открывает TCP-порт addr и вызывает Serve
func (s *Server) ListenAndServe(ctx context.Context, addr string) (*Result, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	defer ln.Close()

	return s.Serve(ctx, ln)
}

// Serve принимает одно соединение из ln и проводит на нем сессию
func (s *Server) Serve(ctx context.Context, ln net.Listener) (*Result, error) {
	s.log.Info("waiting for client", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	conn, err := ln.Accept()
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	return s.ServeConn(ctx, conn)
}

// ServeConn проводит сессию на готовом соединении: сначала отправляет свои записи,
// затем принимает записи клиента. Все изменения идут в одной транзакции записи,
// Finished отправляется только после фиксации.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) (*Result, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	start := time.Now()
	sess := newSession(conn, s.log)

	if err := s.handshake(sess); err != nil {
		s.log.Error("handshake failed", "error", err)
		return nil, err
	}

	result := &Result{}
	exchanged := false
	err := s.store.WithWriteTransaction(ctx, func(w storage.Writer) error {
		if err := s.sendEntries(ctx, sess, w, result); err != nil {
			return err
		}
		if err := s.receiveEntries(ctx, sess, w, result); err != nil {
			return err
		}
		exchanged = true
		return nil
	})
	if err != nil {
		if exchanged {
			sess.abort("failed to commit changes")
		}
		s.log.Error("sync session failed", "error", err)
		return result, err
	}

	if err := sess.send(sync.Finished{}); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	s.log.Info("sync session finished",
		"sent", result.Sent,
		"received", result.Received,
		"duration", result.Duration,
	)

	return result, nil
}

// handshake проверяет Hello клиента: версию протокола и роль
func (s *Server) handshake(sess *session) error {
	p, err := sess.receive()
	if err != nil {
		return fmt.Errorf("receive hello: %w", err)
	}

	hello, ok := p.(sync.Hello)
	if !ok {
		_ = sess.send(sync.Reject(sync.ReasonUnexpected))
		return fmt.Errorf("%w: %s instead of Hello", sync.ErrUnexpectedPacket, p.Kind())
	}

	if hello.ProtocolVersion != sync.ProtocolVersion {
		if err := sess.send(sync.Reject(sync.ReasonVersionMismatch)); err != nil {
			s.log.Warn("failed to reject hello", "error", err)
		}
		return fmt.Errorf("%w: peer %d, local %d", sync.ErrVersionMismatch, hello.ProtocolVersion, sync.ProtocolVersion)
	}

	if hello.Role != sync.RoleClient {
		if err := sess.send(sync.Reject(sync.ReasonRoleMismatch)); err != nil {
			s.log.Warn("failed to reject hello", "error", err)
		}
		return fmt.Errorf("%w: peer announced %q", sync.ErrRoleMismatch, hello.Role)
	}

	if err := sess.send(sync.Accept()); err != nil {
		return err
	}

	s.log.Info("client accepted", "node_id", hello.NodeID)
	return nil
}

func (s *Server) sendEntries(ctx context.Context, sess *session, w storage.Writer, result *Result) error {
	ids, err := w.AllIDs(ctx)
	if err != nil {
		sess.abort("failed to list local entries")
		return err
	}

	for _, id := range ids {
		e, err := w.Get(ctx, id)
		if err != nil {
			sess.abort("failed to read local entry")
			return err
		}
		if e == nil {
			continue
		}

		if err := sess.send(sync.ServerEntry{Entry: e}); err != nil {
			return err
		}
		if err := sess.awaitAck(id.String()); err != nil {
			return err
		}
		result.Sent++
	}

	return sess.send(sync.ServerEntriesEnd{TotalSent: uint64(result.Sent)})
}

// receiveEntries применяет записи клиента до ClientEntriesEnd
func (s *Server) receiveEntries(ctx context.Context, sess *session, w storage.Writer, result *Result) error {
	for {
		p, err := sess.receive()
		if err != nil {
			return err
		}

		switch pk := p.(type) {
		case sync.ClientEntry:
			if pk.Entry == nil {
				sess.abort("empty client entry")
				return fmt.Errorf("%w: ClientEntry without entry", sync.ErrProtocol)
			}

			id := pk.Entry.ID()
			if err := w.Put(ctx, pk.Entry); err != nil {
				if serr := sess.send(sync.NackEntry(id, err.Error())); serr != nil {
					s.log.Warn("failed to send negative ack", "error", serr)
				}
				sess.abort("failed to apply client entry")
				return fmt.Errorf("apply client entry %s: %w", id, err)
			}
			if err := sess.send(sync.AckEntry(id)); err != nil {
				return err
			}
			result.Received++

		case sync.ClientEntriesEnd:
			if pk.TotalSent != uint64(result.Received) {
				s.log.Warn("client entry count mismatch",
					"announced", pk.TotalSent,
					"received", result.Received,
				)
			}
			return nil

		case sync.Abort:
			return fmt.Errorf("%w: %s", sync.ErrPeerAborted, pk.Reason)

		default:
			sess.abort(sync.ReasonUnexpected)
			return fmt.Errorf("%w: %s during client phase", sync.ErrUnexpectedPacket, p.Kind())
		}
	}
}
