package sync

import (
	"context"
	"fmt"

	"pwmgr/internal/domain/entry"
)

// Decision решение по одной входящей записи
type Decision int

// Решения по входящей записи
const (
	DecisionAdoptRemote Decision = iota + 1
	DecisionKeepLocal
	DecisionAbort
)

// String возвращает имя решения для логов
func (d Decision) String() string {
	switch d {
	case DecisionAdoptRemote:
		return "adopt_remote"
	case DecisionKeepLocal:
		return "keep_local"
	case DecisionAbort:
		return "abort"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Resolution решение и, при отказе, причина для собеседника
type Resolution struct {
	Decision Decision
	Reason   string
}

const (
	// ConflictMessage вопрос пользователю, когда запись изменена на обеих сторонах в одну секунду
	ConflictMessage = "Запись %s изменена на обеих сторонах в одно и то же время. Принять версию сервера?"
	ConflictLabel   = "конфликт"

	// ReasonConflictRejected причина Abort после отказа пользователя
	ReasonConflictRejected = "user rejected conflict resolution"
)

// Confirmer задает пользователю вопрос да/нет
type Confirmer interface {
	Confirm(message string, def bool, label string) (bool, error)
}

// EntryGetter ищет локальную копию записи; (nil, nil) если записи нет
type EntryGetter interface {
	Get(ctx context.Context, id entry.ID) (*entry.Entry, error)
}

// Decide применяет правило "побеждает последняя запись" к входящей записи.
// При равных (или обоих отсутствующих) временах и разном содержимом спрашивает пользователя,
// отказ прерывает сессию. Запись без времени обновления проигрывает записи со временем.
func Decide(ctx context.Context, local EntryGetter, incoming *entry.Entry, confirm Confirmer) (Resolution, error) {
	current, err := local.Get(ctx, incoming.ID())
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup local entry: %w", err)
	}
	if current == nil {
		return Resolution{Decision: DecisionAdoptRemote}, nil
	}

	remoteTS, remoteOK := incoming.LastUpdate()
	localTS, localOK := current.LastUpdate()

	if remoteOK == localOK && remoteTS.Equal(localTS) {
		if current.SameContent(incoming) {
			return Resolution{Decision: DecisionKeepLocal}, nil
		}

		ok, err := confirm.Confirm(fmt.Sprintf(ConflictMessage, incoming.ID()), false, ConflictLabel)
		if err != nil {
			return Resolution{}, fmt.Errorf("confirm conflict: %w", err)
		}
		if ok {
			return Resolution{Decision: DecisionAdoptRemote}, nil
		}
		return Resolution{Decision: DecisionAbort, Reason: ReasonConflictRejected}, nil
	}

	switch {
	case remoteOK && localOK && remoteTS.After(localTS):
		return Resolution{Decision: DecisionAdoptRemote}, nil
	case remoteOK && !localOK:
		return Resolution{Decision: DecisionAdoptRemote}, nil
	default:
		return Resolution{Decision: DecisionKeepLocal}, nil
	}
}
