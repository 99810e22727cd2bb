package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockroom/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func orderRouter(h *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/orders", h.Create)
	r.Get("/api/orders", h.List)
	r.Get("/api/orders/summary", h.Summary)
	r.Get("/api/orders/{id}", h.GetByID)
	r.Patch("/api/orders/{id}", h.UpdateStatus)
	return r
}

func newOrderHandlerWithMocks() (http.Handler, *MockOrderService, *MockStatisticsService) {
	orders := new(MockOrderService)
	stats := new(MockStatisticsService)
	return orderRouter(NewOrderHandler(orders, stats, zerolog.Nop())), orders, stats
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestOrderHandler_Create(t *testing.T) {
	created := &model.Order{
		ID:           uuid.New(),
		CustomerName: "John Doe",
		Items: []model.OrderItem{
			{ProductID: "P001", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		TotalAmount: decimal.RequireFromString("20.00"),
		Status:      model.StatusPending,
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: `{"customerName":"John Doe","items":[{"productId":"P001","quantity":2}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderRequest")).Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid JSON",
			body:           `{"customerName":`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name: "Empty order",
			body: `{"customerName":"John Doe","items":[]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, model.ErrEmptyOrder)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyOrder,
		},
		{
			name: "Missing customer name",
			body: `{"items":[{"productId":"P001","quantity":1}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, model.ErrMissingCustomerName)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name: "Invalid quantity",
			body: `{"customerName":"John Doe","items":[{"productId":"P001","quantity":0}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, model.ErrInvalidQuantity)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidQuantity,
		},
		{
			name: "Unknown product",
			body: `{"customerName":"John Doe","items":[{"productId":"P999","quantity":1}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, &model.ProductNotFoundError{ProductID: "P999"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeProductNotFound,
		},
		{
			name: "Insufficient stock",
			body: `{"customerName":"John Doe","items":[{"productId":"P001","quantity":9}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).
					Return(nil, &model.InsufficientStockError{ProductID: "P001", Available: 3, Requested: 9})
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInsufficientStock,
		},
		{
			name: "Compensation failure",
			body: `{"customerName":"John Doe","items":[{"productId":"P001","quantity":1}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", model.ErrCompensationFailed, errors.New("connection reset")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeCompensationFailed,
		},
		{
			name: "Internal error",
			body: `{"customerName":"John Doe","items":[{"productId":"P001","quantity":1}]}`,
			setupMock: func(m *MockOrderService) {
				m.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, orders, _ := newOrderHandlerWithMocks()
			tt.setupMock(orders)

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.expectedCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, resp.Error)
				assert.NotEmpty(t, resp.Message)
			} else {
				var order model.Order
				require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
				assert.Equal(t, created.ID, order.ID)
				assert.Equal(t, model.StatusPending, order.Status)
			}

			orders.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Create_ErrorDetails(t *testing.T) {
	t.Run("Insufficient stock carries the shortfall", func(t *testing.T) {
		router, orders, _ := newOrderHandlerWithMocks()
		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, &model.InsufficientStockError{ProductID: "P001", Available: 0, Requested: 1})

		req := httptest.NewRequest(http.MethodPost, "/api/orders",
			strings.NewReader(`{"customerName":"Ana","items":[{"productId":"P001","quantity":1}]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{
			"error": "INSUFFICIENT_STOCK",
			"message": "insufficient stock for product P001: available 0, requested 1",
			"productId": "P001",
			"available": 0,
			"requested": 1
		}`, w.Body.String())
	})

	t.Run("Internal error hides the cause", func(t *testing.T) {
		router, orders, _ := newOrderHandlerWithMocks()
		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, errors.New("pq: password authentication failed"))

		req := httptest.NewRequest(http.MethodPost, "/api/orders",
			strings.NewReader(`{"customerName":"Ana","items":[{"productId":"P001","quantity":1}]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Compensation failure hides the cause", func(t *testing.T) {
		router, orders, _ := newOrderHandlerWithMocks()
		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: %w", model.ErrCompensationFailed, errors.New("connection reset")))

		req := httptest.NewRequest(http.MethodPost, "/api/orders",
			strings.NewReader(`{"customerName":"Ana","items":[{"productId":"P001","quantity":1}]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCompensationFailed.Message, resp.Message)
	})
}

func TestOrderHandler_Create_IdempotencyKey(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		expectedKey string
	}{
		{name: "Header passed through", header: "abc-123", expectedKey: "abc-123"},
		{name: "Whitespace trimmed", header: "  abc-123  ", expectedKey: "abc-123"},
		{name: "No header", header: "", expectedKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, orders, _ := newOrderHandlerWithMocks()
			orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *model.OrderRequest) bool {
				return req.IdempotencyKey == tt.expectedKey && req.CustomerName == "Ana"
			})).Return(&model.Order{ID: uuid.New(), Status: model.StatusPending}, nil)

			// A key in the body is ignored.
			body := `{"customerName":"Ana","idempotencyKey":"from-body","items":[{"productId":"P001","quantity":1}]}`
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusCreated, w.Code)
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Create_BodyTooLarge(t *testing.T) {
	router, orders, _ := newOrderHandlerWithMocks()

	body := bytes.Repeat([]byte(" "), maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Error)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderHandler_GetByID(t *testing.T) {
	orderID := uuid.New()
	response := &model.OrderResponse{
		Order: model.Order{ID: orderID, CustomerName: "Ana", Status: model.StatusPending},
		Products: []model.Product{
			{ID: "P001", Name: "Tea", Price: decimal.RequireFromString("1.50")},
		},
	}

	tests := []struct {
		name           string
		path           string
		setupMock      func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			path: "/api/orders/" + orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID).Return(response, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Not found",
			path: "/api/orders/" + orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID).Return(nil, model.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
		},
		{
			name:           "Malformed ID",
			path:           "/api/orders/not-a-uuid",
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
		},
		{
			name: "Service error",
			path: "/api/orders/" + orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, orders, _ := newOrderHandlerWithMocks()
			tt.setupMock(orders)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				var body map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, orderID.String(), body["id"])
				assert.Len(t, body["products"], 1)
			}
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, orders, _ := newOrderHandlerWithMocks()
		orders.On("List", mock.Anything).Return([]model.Order{
			{ID: uuid.New(), Status: model.StatusPending},
			{ID: uuid.New(), Status: model.StatusCompleted},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got []model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got, 2)
	})

	t.Run("Empty list renders as an array", func(t *testing.T) {
		router, orders, _ := newOrderHandlerWithMocks()
		orders.On("List", mock.Anything).Return([]model.Order{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Service error", func(t *testing.T) {
		router, orders, _ := newOrderHandlerWithMocks()
		orders.On("List", mock.Anything).Return(nil, errors.New("database error"))

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		path           string
		body           string
		setupMock      func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			path: "/api/orders/" + orderID.String(),
			body: `{"status":"Processing"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, model.StatusProcessing).
					Return(&model.Order{ID: orderID, Status: model.StatusProcessing}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Invalid status",
			path: "/api/orders/" + orderID.String(),
			body: `{"status":"Shipped"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, model.OrderStatus("Shipped")).Return(nil, model.ErrInvalidStatus)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidStatus,
		},
		{
			name: "Forbidden transition",
			path: "/api/orders/" + orderID.String(),
			body: `{"status":"Pending"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, model.StatusPending).
					Return(nil, &model.InvalidTransitionError{From: model.StatusCompleted, To: model.StatusPending})
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInvalidTransition,
		},
		{
			name: "Order not found",
			path: "/api/orders/" + orderID.String(),
			body: `{"status":"Cancelled"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, model.StatusCancelled).Return(nil, model.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
		},
		{
			name:           "Malformed ID",
			path:           "/api/orders/42",
			body:           `{"status":"Cancelled"}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
		},
		{
			name:           "Invalid JSON",
			path:           "/api/orders/" + orderID.String(),
			body:           `status=Cancelled`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, orders, _ := newOrderHandlerWithMocks()
			tt.setupMock(orders)

			req := httptest.NewRequest(http.MethodPatch, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Summary(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, _, stats := newOrderHandlerWithMocks()
		stats.On("Summary", mock.Anything).Return(&model.Summary{
			TotalOrders:   3,
			PendingOrders: 1,
			TotalRevenue:  decimal.RequireFromString("18.15"),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/summary", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"totalOrders":3,"pendingOrders":1,"totalRevenue":18.15}`, w.Body.String())
	})

	t.Run("Service error", func(t *testing.T) {
		router, _, stats := newOrderHandlerWithMocks()
		stats.On("Summary", mock.Anything).Return(nil, errors.New("database error"))

		req := httptest.NewRequest(http.MethodGet, "/api/orders/summary", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
