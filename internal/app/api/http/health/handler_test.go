package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pwmgr/internal/domain/entry"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) AllIDsFiltered(ctx context.Context, excludeRemoved bool) ([]entry.ID, error) {
	args := m.Called(ctx, excludeRemoved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entry.ID), args.Error(1)
}

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name            string
		ids             []entry.ID
		storeErr        error
		expectedEntries int
		wantErr         bool
	}{
		{
			name:            "health check returns OK",
			ids:             []entry.ID{entry.NewID(), entry.NewID()},
			expectedEntries: 2,
		},
		{
			name:     "storage failure",
			storeErr: errors.New("disk gone"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := new(MockCounter)
			store.On("AllIDsFiltered", mock.Anything, true).Return(tt.ids, tt.storeErr)
			handler := NewHandler(store, slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.healthCheck(context.Background(), &Input{})

			// Assert
			store.AssertExpectations(t)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, output)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "OK", output.Body.Status)
			assert.Equal(t, tt.expectedEntries, output.Body.Entries)
		})
	}
}

func TestHandler_SetupRoutes(t *testing.T) {
	store := new(MockCounter)
	store.On("AllIDsFiltered", mock.Anything, true).Return(nil, errors.New("database is locked")).Once()
	store.On("AllIDsFiltered", mock.Anything, true).Return([]entry.ID{entry.NewID()}, nil).Once()

	_, api := humatest.New(t)
	NewHandler(store, slog.Default(), huma.Middlewares{}).SetupRoutes(api)

	path := api.OpenAPI().Paths["/api/v1/health"]
	require.NotNil(t, path)
	require.NotNil(t, path.Get)
	assert.Equal(t, "get-store-health", path.Get.OperationID)

	resp := api.Get("/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = api.Get("/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"entries":1`)

	store.AssertExpectations(t)
}
