package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/rookgm/donations/internal/handler/http/mocks"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdminHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(t *testing.T) *mocks.MockAuthService
		wantStatusCode int
		wantCookie     bool
	}{
		{
			name: "valid_credentials_return_200",
			body: `{"login":"admin","password":"s3cret"}`,
			setup: func(t *testing.T) *mocks.MockAuthService {
				ctrl := gomock.NewController(t)
				authMock := mocks.NewMockAuthService(ctrl)
				authMock.EXPECT().Login(gomock.Any(), "admin", "s3cret").Return("jwt-token", nil).Times(1)
				return authMock
			},
			wantStatusCode: http.StatusOK,
			wantCookie:     true,
		},
		{
			name: "invalid_credentials_return_401",
			body: `{"login":"admin","password":"guess"}`,
			setup: func(t *testing.T) *mocks.MockAuthService {
				ctrl := gomock.NewController(t)
				authMock := mocks.NewMockAuthService(ctrl)
				authMock.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", models.ErrInvalidCredentials).Times(1)
				return authMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "empty_password_return_400",
			body: `{"login":"admin"}`,
			setup: func(t *testing.T) *mocks.MockAuthService {
				ctrl := gomock.NewController(t)
				authMock := mocks.NewMockAuthService(ctrl)
				authMock.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return authMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ctrl := gomock.NewController(t)
			handler := NewAdminHandler(tt.setup(t), mocks.NewMockAdminService(ctrl), time.Hour, zap.NewNop())
			handler.Login()(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			var cookie *http.Cookie
			for _, c := range res.Cookies() {
				if c.Name == authCookieName {
					cookie = c
				}
			}
			if !tt.wantCookie {
				assert.Nil(t, cookie)
				return
			}
			require.NotNil(t, cookie)
			assert.Equal(t, "jwt-token", cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, 3600, cookie.MaxAge)
		})
	}
}

func TestAdminHandler_GetOrder(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	completedAt := createdAt.Add(2 * time.Minute)
	completedAtStr := completedAt.Format(time.RFC3339)

	tests := []struct {
		name           string
		setup          func(t *testing.T) *mocks.MockAdminService
		wantStatusCode int
		wantBody       *OrderResp
	}{
		{
			name: "found_return_200",
			setup: func(t *testing.T) *mocks.MockAdminService {
				ctrl := gomock.NewController(t)
				svcMock := mocks.NewMockAdminService(ctrl)
				svcMock.EXPECT().GetOrder(gomock.Any(), "PTPF_1_ABCDEF").Return(&models.Order{
					MerchantOrderID: "PTPF_1_ABCDEF",
					GatewayOrderID:  "OMO1",
					AmountMinor:     100000,
					State:           models.OrderStateCompleted,
					Donor:           models.DonorInfo{FullName: "Asha Rao", Email: "asha@example.org"},
					TransactionID:   "T1",
					PaymentMode:     "UPI_QR",
					Notified:        true,
					CreatedAt:       createdAt,
					CompletedAt:     &completedAt,
				}, nil).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody: &OrderResp{
				MerchantOrderID: "PTPF_1_ABCDEF",
				GatewayOrderID:  "OMO1",
				Amount:          "₹1,000",
				AmountMinor:     100000,
				State:           "COMPLETED",
				DonorName:       "Asha Rao",
				DonorEmail:      "asha@example.org",
				TransactionID:   "T1",
				PaymentMode:     "UPI_QR",
				Notified:        true,
				CreatedAt:       createdAt.Format(time.RFC3339),
				CompletedAt:     &completedAtStr,
			},
		},
		{
			name: "not_found_return_404",
			setup: func(t *testing.T) *mocks.MockAdminService {
				ctrl := gomock.NewController(t)
				svcMock := mocks.NewMockAdminService(ctrl)
				svcMock.EXPECT().GetOrder(gomock.Any(), gomock.Any()).Return(nil, models.ErrOrderNotFound).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/PTPF_1_ABCDEF", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("merchantOrderID", "PTPF_1_ABCDEF")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			ctrl := gomock.NewController(t)
			handler := NewAdminHandler(mocks.NewMockAuthService(ctrl), tt.setup(t), time.Hour, zap.NewNop())
			handler.GetOrder()(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantBody != nil {
				var got OrderResp
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				if diff := cmp.Diff(*tt.wantBody, got); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestAdminHandler_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	svcMock := mocks.NewMockAdminService(ctrl)
	svcMock.EXPECT().Reconcile(gomock.Any()).Return(&service.ReconcileSummary{
		Checked: 2,
		Results: map[string]int{service.ReconcileCompleted: 1, service.ReconcileUnchanged: 1},
	}, nil).Times(1)

	handler := NewAdminHandler(mocks.NewMockAuthService(ctrl), svcMock, time.Hour, zap.NewNop())

	w := httptest.NewRecorder()
	handler.Reconcile()(w, httptest.NewRequest(http.MethodPost, "/api/admin/reconcile", nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var got service.ReconcileSummary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, 2, got.Checked)
	assert.Equal(t, 1, got.Results[service.ReconcileCompleted])
}
