package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// healthCheckOp отдает состояние хранилища; 503, если база не отвечает
func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "get-store-health",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Store health and active entry count",
		Description: "Reads the entry store and returns its status with the number of active entries",
		Tags:        []string{"health"},
		Errors:      []int{http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}
