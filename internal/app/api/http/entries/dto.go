package entries

import (
	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"
)

type listInput struct {
	Tag string `query:"tag" example:"work" doc:"Вернуть только записи с этим тегом"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Entries []entry.Document `json:"entries" doc:"Записи в порядке ID"`
	Total   int              `json:"total"`
}

type findInput struct {
	ID string `path:"id" example:"01ARZ3NDEKTSV4RRFFQ69G5FAV" doc:"ID записи (ULID)"`
}

type findOutput struct {
	Body entry.Document
}

type tagsOutput struct {
	Body tagsResponse
}

type tagsResponse struct {
	Tags []storage.TagCount `json:"tags"`
}
