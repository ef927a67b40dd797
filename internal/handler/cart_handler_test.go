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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, bookID uuid.UUID, quantity int) (*model.Cart, error) {
	args := m.Called(ctx, userID, bookID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) SetItemQuantity(ctx context.Context, userID string, bookID uuid.UUID, quantity int) (*model.Cart, error) {
	args := m.Called(ctx, userID, bookID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID string, bookID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

// newCartRouter mounts the handler behind the identity middleware the way the
// real router does, so tests drive it with the trusted headers.
func newCartRouter(h *CartHandler) http.Handler {
	logger := zerolog.Nop()
	r := chi.NewRouter()
	r.Use(middleware.Identity(logger))
	r.Get("/api/cart", h.Get)
	r.Post("/api/cart", h.AddItem)
	r.Put("/api/cart", h.UpdateItem)
	r.Delete("/api/cart/{bookId}", h.RemoveItem)
	return r
}

func TestCartHandler_Get(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockCartService)
	router := newCartRouter(NewCartHandler(mockService, logger))

	cart := &model.Cart{ID: uuid.New(), UserID: "user-1", Items: []model.CartItem{}}
	mockService.On("Get", mock.Anything, "user-1").Return(cart, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got model.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, cart.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	mockService.AssertExpectations(t)
}

func TestCartHandler_Get_MissingIdentity(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockCartService)
	router := newCartRouter(NewCartHandler(mockService, logger))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCartHandler_AddItem(t *testing.T) {
	logger := zerolog.Nop()
	bookID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    model.CartItemRequest{BookID: bookID, Quantity: 2},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown book",
			requestBody:    model.CartItemRequest{BookID: bookID, Quantity: 2},
			mockError:      model.ErrBookNotFound,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid quantity",
			requestBody:    model.CartItemRequest{BookID: bookID, Quantity: 0},
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Missing book id",
			requestBody:    model.CartItemRequest{Quantity: 2},
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
			mockService := new(MockCartService)
			router := newCartRouter(NewCartHandler(mockService, logger))

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				var ret *model.Cart
				if tt.mockError == nil {
					ret = &model.Cart{ID: uuid.New(), UserID: "user-1"}
				}
				mockService.On("AddItem", mock.Anything, "user-1", bookID, mock.AnythingOfType("int")).
					Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", "user-1")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCartHandler_UpdateItem(t *testing.T) {
	logger := zerolog.Nop()
	bookID := uuid.New()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "No cart yet",
			mockError:      model.ErrCartNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Line not in cart",
			mockError:      model.ErrCartItemNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			router := newCartRouter(NewCartHandler(mockService, logger))

			var ret *model.Cart
			if tt.mockError == nil {
				ret = &model.Cart{ID: uuid.New(), UserID: "user-1"}
			}
			mockService.On("SetItemQuantity", mock.Anything, "user-1", bookID, 3).
				Return(ret, tt.mockError)

			body, err := json.Marshal(model.CartItemRequest{BookID: bookID, Quantity: 3})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPut, "/api/cart", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", "user-1")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_RemoveItem(t *testing.T) {
	logger := zerolog.Nop()
	bookID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		router := newCartRouter(NewCartHandler(mockService, logger))

		mockService.On("RemoveItem", mock.Anything, "user-1", bookID).
			Return(&model.Cart{ID: uuid.New(), UserID: "user-1", Items: []model.CartItem{}}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/cart/"+bookID.String(), nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Invalid UUID", func(t *testing.T) {
		mockService := new(MockCartService)
		router := newCartRouter(NewCartHandler(mockService, logger))

		req := httptest.NewRequest(http.MethodDelete, "/api/cart/not-a-uuid", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "RemoveItem", mock.Anything, mock.Anything, mock.Anything)
	})
}
