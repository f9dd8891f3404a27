package logger

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLogger_Middleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	_, api := humatest.New(t)
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Middlewares: huma.Middlewares{New(log).Middleware()},
	}, func(context.Context, *struct{}) (*struct{}, error) {
		return nil, huma.Error404NotFound("nope")
	})

	resp := api.Get("/ping")
	require.Equal(t, http.StatusNotFound, resp.Code)

	out := buf.String()
	assert.Contains(t, out, `"msg":"HTTP request"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"path":"/ping"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"component":"http_logger"`)
}
