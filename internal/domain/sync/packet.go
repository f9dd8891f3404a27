package sync

import (
	"fmt"

	"pwmgr/internal/domain/entry"
)

// ProtocolVersion должна совпадать на обеих сторонах
const ProtocolVersion uint16 = 1

// Role роль узла в сессии
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Kind вид пакета внутри кадра
type Kind uint8

const (
	KindHello Kind = iota + 1
	KindHelloAck
	KindServerEntry
	KindServerEntriesEnd
	KindClientEntry
	KindClientEntriesEnd
	KindEntryAck
	KindFinished
	KindAbort
)

// String возвращает имя вида пакета
func (k Kind) String() string {
	switch k {
	case KindHello:
		return "Hello"
	case KindHelloAck:
		return "HelloAck"
	case KindServerEntry:
		return "ServerEntry"
	case KindServerEntriesEnd:
		return "ServerEntriesEnd"
	case KindClientEntry:
		return "ClientEntry"
	case KindClientEntriesEnd:
		return "ClientEntriesEnd"
	case KindEntryAck:
		return "EntryAck"
	case KindFinished:
		return "Finished"
	case KindAbort:
		return "Abort"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Packet одно сообщение протокола
type Packet interface {
	Kind() Kind
}

// Hello первое сообщение клиента
type Hello struct {
	ProtocolVersion uint16 `msgpack:"protocol_version"`
	NodeID          string `msgpack:"node_id"`
	Role            Role   `msgpack:"role"`
	SenderEpochMs   uint64 `msgpack:"sender_epoch_ms"`
}

// HelloAck ответ сервера на Hello
type HelloAck struct {
	ProtocolVersion uint16  `msgpack:"protocol_version"`
	Accepted        bool    `msgpack:"accepted"`
	Reason          *string `msgpack:"reason"`
}

// ServerEntry запись, отправленная сервером
type ServerEntry struct {
	Entry *entry.Entry `msgpack:"entry"`
}

// ServerEntriesEnd конец фазы сервера
type ServerEntriesEnd struct {
	TotalSent uint64 `msgpack:"total_sent"`
}

// ClientEntry запись, отправленная клиентом
type ClientEntry struct {
	Entry *entry.Entry `msgpack:"entry"`
}

// ClientEntriesEnd конец фазы клиента
type ClientEntriesEnd struct {
	TotalSent uint64 `msgpack:"total_sent"`
}

// EntryAck подтверждение или отказ по одной записи
type EntryAck struct {
	EntryID  string  `msgpack:"entry_id"`
	Accepted bool    `msgpack:"accepted"`
	Reason   *string `msgpack:"reason"`
}

// Finished сервер зафиксировал изменения
type Finished struct{}

// Abort прерывание сессии любой стороной
type Abort struct {
	Reason string `msgpack:"reason"`
}

func (Hello) Kind() Kind            { return KindHello }
func (HelloAck) Kind() Kind         { return KindHelloAck }
func (ServerEntry) Kind() Kind      { return KindServerEntry }
func (ServerEntriesEnd) Kind() Kind { return KindServerEntriesEnd }
func (ClientEntry) Kind() Kind      { return KindClientEntry }
func (ClientEntriesEnd) Kind() Kind { return KindClientEntriesEnd }
func (EntryAck) Kind() Kind         { return KindEntryAck }
func (Finished) Kind() Kind         { return KindFinished }
func (Abort) Kind() Kind            { return KindAbort }

// Причины отказа в HelloAck
const (
	ReasonVersionMismatch = "protocol version mismatch"
	ReasonRoleMismatch    = "role mismatch"
	ReasonUnexpected      = "unexpected packet"
)

// Reject строит отрицательный HelloAck
func Reject(reason string) HelloAck {
	return HelloAck{ProtocolVersion: ProtocolVersion, Accepted: false, Reason: &reason}
}

// Accept строит положительный HelloAck
func Accept() HelloAck {
	return HelloAck{ProtocolVersion: ProtocolVersion, Accepted: true}
}

// AckEntry подтверждает запись id
func AckEntry(id entry.ID) EntryAck {
	return EntryAck{EntryID: id.String(), Accepted: true}
}

// NackEntry отклоняет запись id с причиной reason
func NackEntry(id entry.ID, reason string) EntryAck {
	return EntryAck{EntryID: id.String(), Accepted: false, Reason: &reason}
}

// ReasonOf возвращает текст причины или "", если ее нет
func ReasonOf(reason *string) string {
	if reason == nil {
		return ""
	}
	return *reason
}
