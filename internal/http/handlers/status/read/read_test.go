package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Snapshot(ctx context.Context, userUID string) (*models.UserStatus, error) {
	args := m.Called(ctx, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.UserStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const userUID = "b7c2e4a1-5d83-4f96-8a07-3c1d9e6b2f44"

	tests := []struct {
		name           string
		urlParam       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное чтение статуса",
			urlParam: userUID,
			setupMock: func(m *MockService) {
				st := models.NewUserStatus(userUID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
				st.Subscription.CurrentPackage = "premium"
				st.Subscription.PackageStatus = models.PackageStatusActive
				m.On("Snapshot", mock.Anything, userUID).Return(st, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"current_package":"premium"`,
		},
		{
			name:           "некорректный uuid в URL",
			urlParam:       "not-a-uuid",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode user id from url`,
		},
		{
			name:     "ошибка сервиса",
			urlParam: userUID,
			setupMock: func(m *MockService) {
				m.On("Snapshot", mock.Anything, userUID).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not read user status`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/status/"+tt.urlParam, nil)
			// Устанавливаем URL params с помощью роутера chi
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("userID", tt.urlParam)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
