package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/models"
	"github.com/FreeosDAO/cronacle-backend/service"
)

type mockCreditService struct {
	mock.Mock
}

func (m *mockCreditService) Deposit(ctx context.Context, accountID string, amount int64, memo string) (*models.Account, error) {
	args := m.Called(ctx, accountID, amount, memo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockCreditService) Withdraw(ctx context.Context, accountID string, amount int64) (*models.Account, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockCreditService) AvailableCredit(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuctionService struct {
	mock.Mock
}

func (m *mockAuctionService) PlaceBid(ctx context.Context, accountID string, itemID int64, amount int64) (*models.Bid, error) {
	args := m.Called(ctx, accountID, itemID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockAuctionService) Claim(ctx context.Context, accountID string) (*models.AuctionRecord, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuctionRecord), args.Error(1)
}

func (m *mockAuctionService) CurrentAuction(ctx context.Context) (*models.AuctionRecord, []*models.Bid, error) {
	args := m.Called(ctx)
	var record *models.AuctionRecord
	var bids []*models.Bid
	if args.Get(0) != nil {
		record = args.Get(0).(*models.AuctionRecord)
	}
	if args.Get(1) != nil {
		bids = args.Get(1).([]*models.Bid)
	}
	return record, bids, args.Error(2)
}

type mockRegistryService struct {
	mock.Mock
}

func (m *mockRegistryService) StoreIdentity(ctx context.Context, accountID, principal string) (*models.Account, error) {
	args := m.Called(ctx, accountID, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

type mockAdminService struct {
	mock.Mock
}

func (m *mockAdminService) EnqueueItem(ctx context.Context, actorID string, itemID int64) (*models.QueueItem, error) {
	args := m.Called(ctx, actorID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueItem), args.Error(1)
}

func (m *mockAdminService) ListQueue(ctx context.Context) ([]*models.QueueItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueItem), args.Error(1)
}

type mockTickerService struct {
	mock.Mock
}

func (m *mockTickerService) RecordTick(ctx context.Context, actorID string, usdPrice int64) (*models.PriceTick, error) {
	args := m.Called(ctx, actorID, usdPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceTick), args.Error(1)
}

type testServer struct {
	router   *gin.Engine
	credits  *mockCreditService
	auctions *mockAuctionService
	registry *mockRegistryService
	admin    *mockAdminService
	ticker   *mockTickerService
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		credits:  new(mockCreditService),
		auctions: new(mockAuctionService),
		registry: new(mockRegistryService),
		admin:    new(mockAdminService),
		ticker:   new(mockTickerService),
	}

	cfg := &config.Config{
		SystemAccount: "auctionhouse",
		CreditSymbol:  "CREDIT",
		Environment:   "test",
	}

	ts.router = SetupRouter(Services{
		Credits:  ts.credits,
		Auctions: ts.auctions,
		Registry: ts.registry,
		Admin:    ts.admin,
		Ticker:   ts.ticker,
	}, cfg)

	return ts
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestHandleDeposit_AcceptedForSystemAccount(t *testing.T) {
	ts := newTestServer()

	ts.credits.On("Deposit", mock.Anything, "alice", int64(10), "thanks").
		Return(&models.Account{AccountID: "alice", Credit: 10, AvailableCredit: 10}, nil)

	w := ts.postJSON(t, "/deposits", DepositNotification{
		From:     "alice",
		To:       "auctionhouse",
		Quantity: "10 CREDIT",
		Memo:     "thanks",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	ts.credits.AssertExpectations(t)
}

func TestHandleDeposit_IgnoresTransfersToOtherAccounts(t *testing.T) {
	ts := newTestServer()

	w := ts.postJSON(t, "/deposits", DepositNotification{
		From:     "alice",
		To:       "someoneelse",
		Quantity: "10 CREDIT",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
	ts.credits.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDeposit_RejectsWrongCurrency(t *testing.T) {
	ts := newTestServer()

	w := ts.postJSON(t, "/deposits", DepositNotification{
		From:     "alice",
		To:       "auctionhouse",
		Quantity: "10 DOGE",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.credits.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDeposit_RejectsMalformedQuantity(t *testing.T) {
	ts := newTestServer()

	for _, quantity := range []string{"CREDIT", "ten CREDIT", "10CREDIT", "-5 CREDIT"} {
		w := ts.postJSON(t, "/deposits", DepositNotification{
			From:     "alice",
			To:       "auctionhouse",
			Quantity: quantity,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "quantity %q", quantity)
	}
}

func TestHandlePlaceBid(t *testing.T) {
	ts := newTestServer()

	placedAt := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	ts.auctions.On("PlaceBid", mock.Anything, "alice", int64(7), int64(5)).
		Return(&models.Bid{AccountID: "alice", ItemID: 7, Amount: 5, PlacedAt: placedAt}, nil)

	w := ts.postJSON(t, "/bids", PlaceBidRequest{AccountID: "alice", ItemID: 7, Amount: 5})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp BidResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Amount)
	assert.Equal(t, "2024-01-01T00:01:00Z", resp.PlacedAt)
}

func TestHandlePlaceBid_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "bid too low", err: service.ErrBidTooLow, wantStatus: http.StatusUnprocessableEntity},
		{name: "bidding closed", err: service.ErrBiddingClosed, wantStatus: http.StatusConflict},
		{name: "insufficient credit", err: service.ErrInsufficientCredit, wantStatus: http.StatusConflict},
		{name: "not registered", err: service.ErrNotRegistered, wantStatus: http.StatusNotFound},
		{name: "no item offered", err: service.ErrItemNotOffered, wantStatus: http.StatusNotFound},
		{name: "system not open", err: service.ErrSystemNotOpen, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.auctions.On("PlaceBid", mock.Anything, "alice", int64(7), int64(5)).
				Return(nil, tt.err)

			w := ts.postJSON(t, "/bids", PlaceBidRequest{AccountID: "alice", ItemID: 7, Amount: 5})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandlePlaceBid_RejectsInvalidBody(t *testing.T) {
	ts := newTestServer()

	w := ts.postJSON(t, "/bids", map[string]any{"account_id": "alice"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.auctions.AssertNotCalled(t, "PlaceBid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleClaim(t *testing.T) {
	ts := newTestServer()

	winner := "bob"
	amount := int64(20)
	ts.auctions.On("Claim", mock.Anything, "bob").Return(&models.AuctionRecord{
		SequenceNumber:  3,
		ItemID:          7,
		WinnerAccountID: &winner,
		WinningAmount:   &amount,
	}, nil)

	w := ts.postJSON(t, "/claims", ClaimRequest{AccountID: "bob"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AuctionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Winner)
	assert.Equal(t, "bob", *resp.Winner)
}

func TestHandleGetAuction_NoAuctionOnRecord(t *testing.T) {
	ts := newTestServer()

	ts.auctions.On("CurrentAuction", mock.Anything).Return(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/auction", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetCredit(t *testing.T) {
	ts := newTestServer()

	ts.credits.On("AvailableCredit", mock.Anything, "alice").Return(int64(42), nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/alice/credit", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestHandleEnqueueItem_ForbiddenForNonAdmin(t *testing.T) {
	ts := newTestServer()

	ts.admin.On("EnqueueItem", mock.Anything, "mallory", int64(7)).
		Return(nil, service.ErrAuthorizationFailed)

	w := ts.postJSON(t, "/admin/items", EnqueueItemRequest{ActorID: "mallory", ItemID: 7})

	assert.Equal(t, http.StatusForbidden, w.Code)
}
