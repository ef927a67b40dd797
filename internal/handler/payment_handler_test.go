package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmart/internal/middleware"
	"bookmart/internal/model"
	"bookmart/internal/payment"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, requester model.Identity, orderID uuid.UUID, amount float64, extraData string) (*payment.CreateResult, error) {
	args := m.Called(ctx, requester, orderID, amount, extraData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CreateResult), args.Error(1)
}

func (m *MockPaymentService) HandleIPN(ctx context.Context, n *payment.IPNRequest) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func newPaymentRouter(h *PaymentHandler) http.Handler {
	logger := zerolog.Nop()
	r := chi.NewRouter()
	r.Use(middleware.Identity(logger))
	r.Post("/api/payment/momo", h.CreateIntent)
	r.Post("/api/payment/momo/ipn", h.HandleIPN)
	return r
}

func TestPaymentHandler_CreateIntent(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    map[string]interface{}{"orderId": orderID, "amount": 109000},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Order not found",
			requestBody:    map[string]interface{}{"orderId": orderID, "amount": 109000},
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Gateway rejected",
			requestBody:    map[string]interface{}{"orderId": orderID, "amount": 109000},
			mockError:      model.ErrGatewayRejected,
			expectedStatus: http.StatusBadGateway,
			expectService:  true,
		},
		{
			name:           "Gateway unreachable",
			requestBody:    map[string]interface{}{"orderId": orderID, "amount": 109000},
			mockError:      model.ErrGatewayUnreachable,
			expectedStatus: http.StatusBadGateway,
			expectService:  true,
		},
		{
			name:           "Missing order id",
			requestBody:    map[string]interface{}{"amount": 109000},
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPaymentService)
			router := newPaymentRouter(NewPaymentHandler(mockService, logger))

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				var ret *payment.CreateResult
				if tt.mockError == nil {
					ret = &payment.CreateResult{PayURL: "https://pay.example/abc"}
				}
				mockService.On("CreateIntent", mock.Anything, model.Identity{UserID: "user-1"}, orderID, float64(109000), "").
					Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/payment/momo", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", "user-1")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestPaymentHandler_HandleIPN(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Accepted",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Signature mismatch",
			mockError:      model.ErrForbidden,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Terminal order",
			mockError:      model.ErrConflict,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPaymentService)
			router := newPaymentRouter(NewPaymentHandler(mockService, logger))

			mockService.On("HandleIPN", mock.Anything, mock.AnythingOfType("*payment.IPNRequest")).
				Return(tt.mockError)

			body, err := json.Marshal(payment.IPNRequest{
				OrderID:    uuid.New().String(),
				ResultCode: 0,
				Signature:  "abc",
			})
			require.NoError(t, err)

			// The gateway calls back without the trusted identity headers; the
			// IPN route must still be reachable.
			req := httptest.NewRequest(http.MethodPost, "/api/payment/momo/ipn", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}

	t.Run("Invalid JSON", func(t *testing.T) {
		mockService := new(MockPaymentService)
		router := newPaymentRouter(NewPaymentHandler(mockService, logger))

		req := httptest.NewRequest(http.MethodPost, "/api/payment/momo/ipn", bytes.NewBufferString("not json"))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "HandleIPN", mock.Anything, mock.Anything)
	})
}
