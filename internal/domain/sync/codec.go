package sync

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MaxFrameSize максимальный размер полезной нагрузки одного кадра
const MaxFrameSize = 16 << 20

const headerSize = 4

// envelope конверт пакета: вид и тело в MessagePack
type envelope struct {
	Kind Kind               `msgpack:"kind"`
	Body msgpack.RawMessage `msgpack:"body"`
}

type flusher interface {
	Flush() error
}

// Send пишет p одним кадром: длина (4 байта, big-endian) и закодированный пакет.
// Буферизованный writer сбрасывается.
func Send(w io.Writer, p Packet) error {
	payload, err := Encode(p)
	if err != nil {
		return err
	}

	frame := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerSize:], payload)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write %s: %w", p.Kind(), err)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush %s: %w", p.Kind(), err)
		}
	}

	return nil
}

// Receive читает ровно один кадр и декодирует пакет из него
func Receive(r io.Reader) (Packet, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %w (%d bytes)", ErrProtocol, ErrFrameTooLarge, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	return Decode(payload)
}

// Encode сериализует p без кадрирования
func Encode(p Packet) ([]byte, error) {
	body, err := msgpack.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.Kind(), err)
	}

	payload, err := msgpack.Marshal(envelope{Kind: p.Kind(), Body: body})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.Kind(), err)
	}
	if len(payload) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFrameTooLarge, p.Kind(), len(payload))
	}

	return payload, nil
}

// Decode разбирает полезную нагрузку, полученную из Encode
func Decode(payload []byte) (Packet, error) {
	var env envelope
	if err := msgpack.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrProtocol, err)
	}

	switch env.Kind {
	case KindHello:
		return decodeBody[Hello](env.Body)
	case KindHelloAck:
		return decodeBody[HelloAck](env.Body)
	case KindServerEntry:
		return decodeBody[ServerEntry](env.Body)
	case KindServerEntriesEnd:
		return decodeBody[ServerEntriesEnd](env.Body)
	case KindClientEntry:
		return decodeBody[ClientEntry](env.Body)
	case KindClientEntriesEnd:
		return decodeBody[ClientEntriesEnd](env.Body)
	case KindEntryAck:
		return decodeBody[EntryAck](env.Body)
	case KindFinished:
		return decodeBody[Finished](env.Body)
	case KindAbort:
		return decodeBody[Abort](env.Body)
	}

	return nil, fmt.Errorf("%w: unknown packet kind %d", ErrProtocol, env.Kind)
}

func decodeBody[T Packet](body []byte) (Packet, error) {
	var p T
	if err := msgpack.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrProtocol, p.Kind(), err)
	}
	return p, nil
}
