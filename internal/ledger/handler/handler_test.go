package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"itrust/internal/ledger"
	"itrust/internal/ledger/handler/mocks"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
	"itrust/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/vouch-mocks.go -package=mocks Service
type VouchHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *VouchHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestVouchHandlerSuite(t *testing.T) {
	suite.Run(t, new(VouchHandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger, nil, nil)
	return handler, mockService
}

func (s *VouchHandlerSuite) TestHandleVouch() {
	handler, mockService := newTestHandler(s.T())
	voucher := domain.NewAccountID()
	vouchee := domain.NewAccountID()
	committedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mockService.EXPECT().Vouch(gomock.Any(), voucher, vouchee, "req-42").Return(&ledger.VouchResult{
		Event: ledger.VouchEvent{
			ID:        domain.NewEventID(),
			VoucherID: voucher,
			VoucheeID: vouchee,
			Amount:    domain.VouchCost,
			CreatedAt: committedAt,
		},
		Voucher: ledger.ParticipantState{AccountID: voucher, DisplayName: "Alice", TrustBalance: domain.TrustFromMilli(800)},
		Vouchee: ledger.ParticipantState{AccountID: vouchee, DisplayName: "Bob", Reputation: 1},
	}, nil)

	body, err := json.Marshal(vouchRequest{VoucheeID: vouchee.String()})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/api/vouch", bytes.NewReader(body))
	req.Header.Set("Idempotency-Key", "req-42")
	req = testutil.WithAccount(req, voucher)

	w := httptest.NewRecorder()
	handler.handleVouch(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp struct {
		Event struct {
			Amount string `json:"amount"`
		} `json:"event"`
		Voucher struct {
			TrustBalance string `json:"trustBalance"`
		} `json:"voucher"`
		Vouchee struct {
			Reputation int64 `json:"reputation"`
		} `json:"vouchee"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "0.2", resp.Event.Amount)
	assert.Equal(s.T(), "0.8", resp.Voucher.TrustBalance)
	assert.Equal(s.T(), int64(1), resp.Vouchee.Reputation)
}

func (s *VouchHandlerSuite) TestHandleVouchMissingAuthContext() {
	handler, _ := newTestHandler(s.T())

	body, _ := json.Marshal(vouchRequest{VoucheeID: domain.NewAccountID().String()})
	req := httptest.NewRequest(http.MethodPost, "/api/vouch", bytes.NewReader(body))

	w := httptest.NewRecorder()
	handler.handleVouch(w, req)

	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
}

func (s *VouchHandlerSuite) TestHandleVouchInvalidBody() {
	handler, _ := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodPost, "/api/vouch", bytes.NewReader([]byte("{not json")))
	req = testutil.WithAccount(req, domain.NewAccountID())

	w := httptest.NewRecorder()
	handler.handleVouch(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *VouchHandlerSuite) TestHandleVouchInvalidVoucheeID() {
	handler, _ := newTestHandler(s.T())

	body, _ := json.Marshal(vouchRequest{VoucheeID: "not-a-uuid"})
	req := httptest.NewRequest(http.MethodPost, "/api/vouch", bytes.NewReader(body))
	req = testutil.WithAccount(req, domain.NewAccountID())

	w := httptest.NewRecorder()
	handler.handleVouch(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *VouchHandlerSuite) TestHandleVouchErrorMapping() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"self vouch", dErrors.New(dErrors.CodeSelfVouch, "cannot vouch for yourself"), http.StatusUnprocessableEntity, "self_vouch"},
		{"insufficient balance", dErrors.New(dErrors.CodeInsufficientBalance, "balance too low"), http.StatusPaymentRequired, "insufficient_balance"},
		{"vouchee missing", dErrors.New(dErrors.CodeNotFound, "vouchee not found"), http.StatusNotFound, "not_found"},
		{"lock timeout", dErrors.New(dErrors.CodeTimeout, "vouch timed out"), http.StatusRequestTimeout, "timeout"},
		{"write conflict", dErrors.New(dErrors.CodeConflict, "concurrent update"), http.StatusConflict, "conflict"},
		{"internal", dErrors.New(dErrors.CodeInternal, "boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			handler, mockService := newTestHandler(s.T())
			voucher := domain.NewAccountID()
			vouchee := domain.NewAccountID()
			mockService.EXPECT().Vouch(gomock.Any(), voucher, vouchee, "").Return(nil, tc.err)

			body, _ := json.Marshal(vouchRequest{VoucheeID: vouchee.String()})
			req := httptest.NewRequest(http.MethodPost, "/api/vouch", bytes.NewReader(body))
			req = testutil.WithAccount(req, voucher)

			w := httptest.NewRecorder()
			handler.handleVouch(w, req)

			assert.Equal(s.T(), tc.wantStatus, w.Code)
			var resp map[string]string
			require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(s.T(), tc.wantCode, resp["error"])
		})
	}
}

func (s *VouchHandlerSuite) TestHandleCost() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().Cost().Return(domain.VouchCost)

	req := httptest.NewRequest(http.MethodGet, "/api/vouch/cost", nil)
	w := httptest.NewRecorder()
	handler.handleCost(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "0.2", resp["cost"])
}
