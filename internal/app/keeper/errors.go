package keeper

import "errors"

var (
	ErrNoMatch         = errors.New("подходящие записи не найдены")
	ErrNoTags          = errors.New("теги не назначены ни одной записи")
	ErrNothingToExport = errors.New("нет записей для экспорта")
	ErrIDChanged       = errors.New("ID записи был изменен")
	ErrEmptyService    = errors.New("не указано имя сервиса")
	ErrEmptyProperties = errors.New("не задано ни одного свойства")
	ErrInvalidDocument = errors.New("не удалось разобрать YAML")
	ErrImportCancelled = errors.New("импорт отменен")
	ErrDuplicateID     = errors.New("запись с таким ID уже существует")
	ErrUnknownMatch    = errors.New("неизвестный режим сопоставления")
)
