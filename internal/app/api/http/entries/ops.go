package entries

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries",
		Summary:     "Список активных записей",
		Tags:        []string{"entries"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries/{id}",
		Summary:     "Получить запись",
		Description: "Возвращает запись по ID, в том числе удаленную. Секретные свойства маскируются.",
		Tags:        []string{"entries"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) tagsOp() huma.Operation {
	return huma.Operation{
		OperationID: "tags-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "Теги с количеством активных записей",
		Tags:        []string{"tags"},
		Middlewares: h.middleware,
	}
}
