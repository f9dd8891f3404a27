package entry

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Document плоская сериализуемая форма Entry. Одна и та же структура используется
// для строки в базе и сетевого протокола, а также для редактирования в YAML и вывода в JSON.
type Document struct {
	ID         string            `json:"id" yaml:"id" msgpack:"id"`
	Service    string            `json:"service" yaml:"service" msgpack:"service"`
	Aliases    []string          `json:"aliases" yaml:"aliases" msgpack:"aliases"`
	Tags       []string          `json:"tags" yaml:"tags" msgpack:"tags"`
	Properties map[string]string `json:"properties" yaml:"properties" msgpack:"properties"`
	LastUpdate string            `json:"last_update,omitempty" yaml:"last_update,omitempty" msgpack:"last_update,omitempty"`
	Removed    *bool             `json:"removed,omitempty" yaml:"removed,omitempty" msgpack:"removed,omitempty"`
}

// Document возвращает сериализуемую форму записи
func (e *Entry) Document() Document {
	d := Document{
		ID:         e.id.String(),
		Service:    e.service,
		Aliases:    e.Aliases(),
		Tags:       e.Tags(),
		Properties: e.Properties(),
	}
	if ts, ok := e.LastUpdate(); ok {
		d.LastUpdate = ts.Format(time.RFC3339)
	}
	if e.removed {
		removed := true
		d.Removed = &removed
	}
	return d
}

// FromDocument проверяет d и строит из него нормализованную запись.
// Время обновления и признак удаления берутся из документа как есть.
func FromDocument(d Document) (*Entry, error) {
	id, err := ParseID(d.ID)
	if err != nil {
		return nil, err
	}

	e := &Entry{
		id:         id,
		service:    d.Service,
		aliases:    normalize(d.Aliases),
		tags:       normalize(d.Tags),
		properties: copyProperties(d.Properties),
		removed:    d.Removed != nil && *d.Removed,
	}

	if d.LastUpdate != "" {
		ts, err := time.Parse(time.RFC3339, d.LastUpdate)
		if err != nil {
			return nil, fmt.Errorf("%w: last_update: %v", ErrInvalidEntry, err)
		}
		e.SetLastUpdate(ts.Local())
	}

	return e, nil
}

// EncodeMsgpack реализует msgpack.CustomEncoder
func (e Entry) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(e.Document())
}

// DecodeMsgpack реализует msgpack.CustomDecoder
func (e *Entry) DecodeMsgpack(dec *msgpack.Decoder) error {
	var d Document
	if err := dec.Decode(&d); err != nil {
		return err
	}
	decoded, err := FromDocument(d)
	if err != nil {
		return err
	}
	*e = *decoded
	return nil
}

// Marshal кодирует запись в бинарную форму
func Marshal(e *Entry) ([]byte, error) {
	return msgpack.Marshal(e)
}

// Unmarshal декодирует бинарную форму, полученную из Marshal
func Unmarshal(data []byte) (*Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &e, nil
}
