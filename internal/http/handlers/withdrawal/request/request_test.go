package request

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// MockService реализует интерфейс request.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessWithdrawalRequest(ctx context.Context, req models.DummyWithdrawal) (*models.WithdrawalResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.WithdrawalResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestWithdrawalHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const userUID = "9c1e5f3b-2d84-47a6-b1c9-6e0a8d7f2b55"

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный запрос на вывод",
			body: `{"user_uid":"` + userUID + `","amount":500}`,
			setupMock: func(m *MockService) {
				m.On("ProcessWithdrawalRequest", mock.Anything,
					models.DummyWithdrawal{UserUID: userUID, Amount: 500}).
					Return(&models.WithdrawalResult{
						Success:                 true,
						Priority:                "gold",
						EstimatedProcessingTime: "4-8 hours",
						PendingAmount:           500,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"priority":"gold"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"user_uid":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "ошибка валидации суммы",
			body:           `{"user_uid":"` + userUID + `","amount":-10}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Amount must be greater than 0`,
		},
		{
			name: "недостаточный баланс",
			body: `{"user_uid":"` + userUID + `","amount":5000}`,
			setupMock: func(m *MockService) {
				m.On("ProcessWithdrawalRequest", mock.Anything, mock.Anything).
					Return(nil, models.ErrInsufficientBalance)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `insufficient balance`,
		},
		{
			name: "превышен дневной лимит",
			body: `{"user_uid":"` + userUID + `","amount":5000}`,
			setupMock: func(m *MockService) {
				m.On("ProcessWithdrawalRequest", mock.Anything, mock.Anything).
					Return(nil, models.ErrDailyLimitExceeded)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `daily withdrawal limit exceeded`,
		},
		{
			name: "ошибка сервиса",
			body: `{"user_uid":"` + userUID + `","amount":100}`,
			setupMock: func(m *MockService) {
				m.On("ProcessWithdrawalRequest", mock.Anything, mock.Anything).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not process withdrawal`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/withdrawals", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
