package entry

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// IDSize длина бинарного представления ID
const IDSize = 16

// ID идентификатор записи. Это ULID, поэтому порядок байт примерно совпадает
// с порядком создания.
type ID struct {
	u ulid.ULID
}

// NewID генерирует новый идентификатор; в пределах одной миллисекунды
// идентификаторы процесса монотонно растут
func NewID() ID {
	return ID{u: ulid.Make()}
}

// ParseID разбирает текстовую форму из 26 символов
func ParseID(s string) (ID, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w %q: %v", ErrInvalidID, s, err)
	}
	return ID{u: u}, nil
}

// IDFromBytes разбирает бинарную форму из 16 байт
func IDFromBytes(b []byte) (ID, error) {
	if len(b) != IDSize {
		return ID{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidID, IDSize, len(b))
	}
	var id ID
	copy(id.u[:], b)
	return id, nil
}

// MinID нижняя граница пространства идентификаторов (включительно)
func MinID() ID {
	return ID{}
}

// MaxID верхняя граница пространства идентификаторов (включительно)
func MaxID() ID {
	var id ID
	for i := range id.u {
		id.u[i] = 0xff
	}
	return id
}

// String возвращает текстовую форму ULID
func (id ID) String() string {
	return id.u.String()
}

// Bytes возвращает копию бинарной формы
func (id ID) Bytes() []byte {
	b := make([]byte, IDSize)
	copy(b, id.u[:])
	return b
}

// Compare сравнивает идентификаторы побайтово: -1, 0 или 1
func (id ID) Compare(other ID) int {
	return id.u.Compare(other.u)
}

// IsZero сообщает, что идентификатор не задан
func (id ID) IsZero() bool {
	return id == ID{}
}
