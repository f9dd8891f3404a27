package syncer

import (
	"context"
	"fmt"
	"net"
	"slices"
	"time"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/domain/sync"
	"pwmgr/internal/infrastructure/storage"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Client подключающаяся сторона синхронизации. По каждой записи сервера решает,
// принять ли ее, затем отправляет серверу записи, где локальная версия победила.
type Client struct {
	store   storage.Store
	confirm sync.Confirmer
	log     *slog.Logger
	nodeID  string
	version uint16
}

// ClientOption настройка клиента
type ClientOption func(*Client)

// WithProtocolVersion подменяет объявляемую версию протокола
func WithProtocolVersion(v uint16) ClientOption {
	return func(c *Client) {
		c.version = v
	}
}

// WithNodeID задает идентификатор узла вместо случайного UUID
func WithNodeID(id string) ClientOption {
	return func(c *Client) {
		c.nodeID = id
	}
}

// NewClient создает клиента синхронизации
func NewClient(store storage.Store, confirm sync.Confirmer, log *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		store:   store,
		confirm: confirm,
		log:     log.With("component", "sync_client"),
		nodeID:  uuid.NewString(),
		version: sync.ProtocolVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunClient подключается к addr и проводит одну сессию
func RunClient(ctx context.Context, addr string, store storage.Store, confirm sync.Confirmer, log *slog.Logger) (*Result, error) {
	return NewClient(store, confirm, log).Sync(ctx, addr)
}

// Sync подключается к addr по TCP и вызывает SyncConn
func (c *Client) Sync(ctx context.Context, addr string) (*Result, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	return c.SyncConn(ctx, conn)
}

// SyncConn проводит сессию на готовом соединении. Все локальные изменения
// идут в одной транзакции записи, поэтому неудачная сессия не меняет хранилище.
func (c *Client) SyncConn(ctx context.Context, conn net.Conn) (*Result, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	start := time.Now()
	sess := newSession(conn, c.log)

	if err := c.handshake(sess); err != nil {
		c.log.Error("handshake failed", "error", err)
		return nil, err
	}

	result := &Result{}
	err := c.store.WithWriteTransaction(ctx, func(w storage.Writer) error {
		ids, err := w.AllIDs(ctx)
		if err != nil {
			sess.abort("failed to list local entries")
			return err
		}

		remaining := make(map[entry.ID]struct{}, len(ids))
		for _, id := range ids {
			remaining[id] = struct{}{}
		}

		candidates, err := c.receiveEntries(ctx, sess, w, remaining, result)
		if err != nil {
			return err
		}
		for id := range remaining {
			candidates = append(candidates, id)
		}
		slices.SortFunc(candidates, entry.ID.Compare)

		if err := c.sendEntries(ctx, sess, w, candidates, result); err != nil {
			return err
		}

		return c.awaitFinished(sess)
	})
	if err != nil {
		c.log.Error("sync session failed", "error", err)
		return result, err
	}

	result.Duration = time.Since(start)
	c.log.Info("sync session finished",
		"received", result.Received,
		"adopted", result.Adopted,
		"kept", result.Kept,
		"sent", result.Sent,
		"duration", result.Duration,
	)

	return result, nil
}

func (c *Client) handshake(sess *session) error {
	hello := sync.Hello{
		ProtocolVersion: c.version,
		NodeID:          c.nodeID,
		Role:            sync.RoleClient,
		SenderEpochMs:   uint64(time.Now().UnixMilli()),
	}
	if err := sess.send(hello); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	p, err := sess.receive()
	if err != nil {
		return fmt.Errorf("receive hello ack: %w", err)
	}

	ack, ok := p.(sync.HelloAck)
	if !ok {
		return fmt.Errorf("%w: %s instead of HelloAck", sync.ErrUnexpectedPacket, p.Kind())
	}

	if !ack.Accepted {
		reason := sync.ReasonOf(ack.Reason)
		switch reason {
		case sync.ReasonVersionMismatch:
			return fmt.Errorf("%w: server speaks %d", sync.ErrVersionMismatch, ack.ProtocolVersion)
		case sync.ReasonRoleMismatch:
			return fmt.Errorf("%w: rejected by server", sync.ErrRoleMismatch)
		}
		return fmt.Errorf("%w: hello: %s", sync.ErrRejected, reason)
	}

	if ack.ProtocolVersion != c.version {
		return fmt.Errorf("%w: server speaks %d, client %d", sync.ErrVersionMismatch, ack.ProtocolVersion, c.version)
	}

	return nil
}

// receiveEntries фаза сервера. Каждый полученный id убирается из remaining;
// возвращаются записи, где победила локальная копия и которые надо отправить.
func (c *Client) receiveEntries(
	ctx context.Context,
	sess *session,
	w storage.Writer,
	remaining map[entry.ID]struct{},
	result *Result,
) ([]entry.ID, error) {
	var candidates []entry.ID

	for {
		p, err := sess.receive()
		if err != nil {
			return nil, err
		}

		switch pk := p.(type) {
		case sync.ServerEntry:
			if pk.Entry == nil {
				sess.abort("empty server entry")
				return nil, fmt.Errorf("%w: ServerEntry without entry", sync.ErrProtocol)
			}

			incoming := pk.Entry
			id := incoming.ID()
			delete(remaining, id)
			result.Received++

			res, err := sync.Decide(ctx, w, incoming, c.confirm)
			if err != nil {
				_ = sess.send(sync.NackEntry(id, "failed to resolve entry"))
				sess.abort("failed to resolve entry")
				return nil, err
			}

			switch res.Decision {
			case sync.DecisionAdoptRemote:
				if err := w.Put(ctx, incoming); err != nil {
					_ = sess.send(sync.NackEntry(id, err.Error()))
					sess.abort("failed to apply server entry")
					return nil, fmt.Errorf("apply server entry %s: %w", id, err)
				}
				result.Adopted++
			case sync.DecisionKeepLocal:
				candidates = append(candidates, id)
				result.Kept++
			case sync.DecisionAbort:
				if err := sess.send(sync.NackEntry(id, res.Reason)); err != nil {
					c.log.Warn("failed to send negative ack", "error", err)
				}
				sess.abort(res.Reason)
				return nil, fmt.Errorf("%w: entry %s: %s", sync.ErrConflictDeclined, id, res.Reason)
			}

			c.log.Debug("server entry resolved", "id", id.String(), "decision", res.Decision.String())

			if err := sess.send(sync.AckEntry(id)); err != nil {
				return nil, err
			}

		case sync.ServerEntriesEnd:
			if pk.TotalSent != uint64(result.Received) {
				c.log.Warn("server entry count mismatch",
					"announced", pk.TotalSent,
					"received", result.Received,
				)
			}
			return candidates, nil

		case sync.Abort:
			return nil, fmt.Errorf("%w: %s", sync.ErrPeerAborted, pk.Reason)

		default:
			sess.abort(sync.ReasonUnexpected)
			return nil, fmt.Errorf("%w: %s during server phase", sync.ErrUnexpectedPacket, p.Kind())
		}
	}
}

// sendEntries фаза клиента: отправка записей по одной с ожиданием подтверждения
func (c *Client) sendEntries(ctx context.Context, sess *session, w storage.Writer, ids []entry.ID, result *Result) error {
	for _, id := range ids {
		e, err := w.Get(ctx, id)
		if err != nil {
			sess.abort("failed to read local entry")
			return err
		}
		if e == nil {
			continue
		}

		if err := sess.send(sync.ClientEntry{Entry: e}); err != nil {
			return err
		}
		if err := sess.awaitAck(id.String()); err != nil {
			return err
		}
		result.Sent++
	}

	return sess.send(sync.ClientEntriesEnd{TotalSent: uint64(result.Sent)})
}

// awaitFinished ждет Finished от сервера
func (c *Client) awaitFinished(sess *session) error {
	p, err := sess.receive()
	if err != nil {
		return fmt.Errorf("wait for finish: %w", err)
	}

	switch pk := p.(type) {
	case sync.Finished:
		return nil
	case sync.Abort:
		return fmt.Errorf("%w: %s", sync.ErrPeerAborted, pk.Reason)
	default:
		return fmt.Errorf("%w: %s instead of Finished", sync.ErrUnexpectedPacket, p.Kind())
	}
}
