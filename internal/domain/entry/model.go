package entry

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// SecretMask подставляется вместо значений секретных свойств при выводе
const SecretMask = "<< SECRET >>"

// SecretSuffix помечает ключ свойства как секретный
const SecretSuffix = "!"

// Entry одна запись с учетными данными
type Entry struct {
	id         ID
	service    string
	aliases    []string
	tags       []string
	properties map[string]string
	lastUpdate *time.Time
	removed    bool
}

// New создает нормализованную запись с текущим временем обновления
func New(id ID, service string, aliases, tags []string, properties map[string]string) *Entry {
	e := &Entry{
		id:         id,
		service:    service,
		aliases:    normalize(aliases),
		tags:       normalize(tags),
		properties: copyProperties(properties),
	}
	e.SetLastUpdateNow()
	return e
}

// ID возвращает идентификатор записи
func (e *Entry) ID() ID {
	return e.id
}

// Service возвращает название сервиса
func (e *Entry) Service() string {
	return e.service
}

// Aliases возвращает копию отсортированного списка псевдонимов
func (e *Entry) Aliases() []string {
	return slices.Clone(e.aliases)
}

// Tags возвращает копию отсортированного списка тегов
func (e *Entry) Tags() []string {
	return slices.Clone(e.tags)
}

// Properties возвращает копию свойств
func (e *Entry) Properties() map[string]string {
	return copyProperties(e.properties)
}

// LastUpdate возвращает время последнего изменения, если оно записано
func (e *Entry) LastUpdate() (time.Time, bool) {
	if e.lastUpdate == nil {
		return time.Time{}, false
	}
	return *e.lastUpdate, true
}

// SetLastUpdate сохраняет t с точностью до секунды
func (e *Entry) SetLastUpdate(t time.Time) {
	ts := t.Truncate(time.Second)
	e.lastUpdate = &ts
}

// SetLastUpdateNow ставит текущее время
func (e *Entry) SetLastUpdateNow() {
	e.SetLastUpdate(time.Now())
}

// ClearLastUpdate стирает время обновления
func (e *Entry) ClearLastUpdate() {
	e.lastUpdate = nil
}

// IsRemoved сообщает, что запись мягко удалена
func (e *Entry) IsRemoved() bool {
	return e.removed
}

// SetRemoved помечает запись удаленной; false возвращает признак в исходное состояние
func (e *Entry) SetRemoved(removed bool) {
	e.removed = removed
}

// MaskSecretProperties заменяет значения секретных свойств на месте.
// Только для копий, которые идут на вывод.
func (e *Entry) MaskSecretProperties() {
	for k := range e.properties {
		if IsSecretKey(k) {
			e.properties[k] = SecretMask
		}
	}
}

// IsSecretKey сообщает, что ключ свойства секретный
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, SecretSuffix)
}

// SameContent сравнивает все поля, кроме времени обновления
func (e *Entry) SameContent(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.id == other.id &&
		e.service == other.service &&
		slices.Equal(e.aliases, other.aliases) &&
		slices.Equal(e.tags, other.tags) &&
		maps.Equal(e.properties, other.properties) &&
		e.removed == other.removed
}

// Equal сравнивает все поля, включая время обновления
func (e *Entry) Equal(other *Entry) bool {
	if !e.SameContent(other) {
		return false
	}
	if e == nil {
		return true
	}
	a, aok := e.LastUpdate()
	b, bok := other.LastUpdate()
	return aok == bok && a.Equal(b)
}

// Clone возвращает глубокую копию записи
func (e *Entry) Clone() *Entry {
	c := &Entry{
		id:         e.id,
		service:    e.service,
		aliases:    slices.Clone(e.aliases),
		tags:       slices.Clone(e.tags),
		properties: copyProperties(e.properties),
		removed:    e.removed,
	}
	if e.lastUpdate != nil {
		ts := *e.lastUpdate
		c.lastUpdate = &ts
	}
	return c
}

func normalize(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func copyProperties(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	maps.Copy(out, p)
	return out
}
