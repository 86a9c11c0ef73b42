package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"lead-exchange/internal/auctionerrors"
	model "lead-exchange/internal/models"
	"lead-exchange/services/auction/helpers"
)

func performRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// Test CommitBidHandler
func TestCommitBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService, NewMockSweeperInterface(ctrl))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids/commit", handler.CommitBidHandler)

	now := time.Now().UTC()
	commitment := "c0ffee0000000000000000000000000000000000000000000000000000000000"

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success_sealed_bid",
			requestBody: helpers.CommitBidRequest{
				LeadID:     "lead1",
				BuyerID:    "buyerA",
				Commitment: commitment,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceSealedBid(gomock.Any(), "lead1", "buyerA", commitment).
					Return(model.Bid{
						BidID:       "bid1",
						LeadID:      "lead1",
						BuyerID:     "buyerA",
						Commitment:  commitment,
						Status:      model.BidPending,
						CommittedAt: now,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "sealed bid recorded successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "bid1", data["bid_id"])
				require.Equal(t, string(model.BidPending), data["status"])
				require.Equal(t, commitment, data["commitment"])
				_, sealed := data["amount"]
				require.False(t, sealed, "a pending bid must not expose an amount")
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "missing_commitment",
			requestBody: helpers.CommitBidRequest{
				LeadID:  "lead1",
				BuyerID: "buyerA",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "lead_not_in_auction",
			requestBody: helpers.CommitBidRequest{
				LeadID:     "lead1",
				BuyerID:    "buyerA",
				Commitment: commitment,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceSealedBid(gomock.Any(), "lead1", "buyerA", commitment).
					Return(model.Bid{}, auctionerrors.ErrPhaseConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "operation not allowed in current phase",
		},
		{
			name: "compliance_rejection",
			requestBody: helpers.CommitBidRequest{
				LeadID:     "lead1",
				BuyerID:    "buyerA",
				Commitment: commitment,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceSealedBid(gomock.Any(), "lead1", "buyerA", commitment).
					Return(model.Bid{}, auctionerrors.ErrComplianceRejected)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "transaction rejected by compliance",
		},
		{
			name: "buyer_constraints_mismatch",
			requestBody: helpers.CommitBidRequest{
				LeadID:     "lead1",
				BuyerID:    "buyerA",
				Commitment: commitment,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceSealedBid(gomock.Any(), "lead1", "buyerA", commitment).
					Return(model.Bid{}, auctionerrors.ErrPreferenceMismatch)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "lead does not match buyer constraints",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			w := performRequest(t, router, http.MethodPost, "/bids/commit", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			envelope := decodeEnvelope(t, w)
			require.Equal(t, tc.expectedMsg, envelope["message"])

			if tc.validateData != nil {
				data, ok := envelope["data"].(map[string]any)
				require.True(t, ok)
				tc.validateData(t, data)
			}
		})
	}
}

// Test DirectBidHandler
func TestDirectBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService, NewMockSweeperInterface(ctrl))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids/direct", handler.DirectBidHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success_direct_bid",
			requestBody: helpers.DirectBidRequest{
				LeadID:  "lead1",
				BuyerID: "buyerA",
				Amount:  decimal.RequireFromString("80"),
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceDirectBid(gomock.Any(), "lead1", "buyerA", gomock.Any()).
					Return(model.Bid{
						BidID:       "bid1",
						LeadID:      "lead1",
						BuyerID:     "buyerA",
						Amount:      decimal.RequireFromString("80"),
						Status:      model.BidRevealed,
						CommittedAt: now,
						RevealedAt:  now,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "direct bid recorded successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, string(model.BidRevealed), data["status"])
				require.Equal(t, "80", data["amount"])
			},
		},
		{
			name: "below_reserve",
			requestBody: helpers.DirectBidRequest{
				LeadID:  "lead1",
				BuyerID: "buyerA",
				Amount:  decimal.RequireFromString("10"),
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceDirectBid(gomock.Any(), "lead1", "buyerA", gomock.Any()).
					Return(model.Bid{}, auctionerrors.ErrBelowReserve)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "bid below reserve price",
		},
		{
			name: "missing_amount",
			requestBody: helpers.DirectBidRequest{
				LeadID:  "lead1",
				BuyerID: "buyerA",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			w := performRequest(t, router, http.MethodPost, "/bids/direct", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			envelope := decodeEnvelope(t, w)
			require.Equal(t, tc.expectedMsg, envelope["message"])

			if tc.validateData != nil {
				data, ok := envelope["data"].(map[string]any)
				require.True(t, ok)
				tc.validateData(t, data)
			}
		})
	}
}

// Test RevealBidHandler
func TestRevealBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService, NewMockSweeperInterface(ctrl))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids/:bid_id/reveal", handler.RevealBidHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success_reveal",
			requestBody: helpers.RevealBidRequest{
				BuyerID: "buyerA",
				Amount:  decimal.RequireFromString("80"),
				Salt:    "saltA",
			},
			mockSetup: func() {
				mockService.EXPECT().
					RevealBid(gomock.Any(), "bid1", "buyerA", gomock.Any(), "saltA").
					Return(model.Bid{
						BidID:       "bid1",
						LeadID:      "lead1",
						BuyerID:     "buyerA",
						Amount:      decimal.RequireFromString("80"),
						Salt:        "saltA",
						Status:      model.BidRevealed,
						CommittedAt: now.Add(-time.Hour),
						RevealedAt:  now,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bid revealed successfully",
		},
		{
			name: "commitment_mismatch",
			requestBody: helpers.RevealBidRequest{
				BuyerID: "buyerA",
				Amount:  decimal.RequireFromString("81"),
				Salt:    "saltA",
			},
			mockSetup: func() {
				mockService.EXPECT().
					RevealBid(gomock.Any(), "bid1", "buyerA", gomock.Any(), "saltA").
					Return(model.Bid{}, auctionerrors.ErrCommitmentMismatch)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "reveal does not match commitment",
		},
		{
			name: "wrong_caller",
			requestBody: helpers.RevealBidRequest{
				BuyerID: "buyerB",
				Amount:  decimal.RequireFromString("80"),
				Salt:    "saltA",
			},
			mockSetup: func() {
				mockService.EXPECT().
					RevealBid(gomock.Any(), "bid1", "buyerB", gomock.Any(), "saltA").
					Return(model.Bid{}, auctionerrors.ErrUnauthorized)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "bid belongs to another buyer",
		},
		{
			name: "bid_not_found",
			requestBody: helpers.RevealBidRequest{
				BuyerID: "buyerA",
				Amount:  decimal.RequireFromString("80"),
				Salt:    "saltA",
			},
			mockSetup: func() {
				mockService.EXPECT().
					RevealBid(gomock.Any(), "bid1", "buyerA", gomock.Any(), "saltA").
					Return(model.Bid{}, auctionerrors.ErrBidNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "bid not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			w := performRequest(t, router, http.MethodPost, "/bids/bid1/reveal", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			envelope := decodeEnvelope(t, w)
			require.Equal(t, tc.expectedMsg, envelope["message"])
		})
	}
}

// Test WithdrawBidHandler
func TestWithdrawBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService, NewMockSweeperInterface(ctrl))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids/:bid_id/withdraw", handler.WithdrawBidHandler)

	t.Run("success_withdraw", func(t *testing.T) {
		mockService.EXPECT().
			WithdrawBid(gomock.Any(), "bid1", "buyerA").
			Return(model.Bid{
				BidID:   "bid1",
				LeadID:  "lead1",
				BuyerID: "buyerA",
				Status:  model.BidWithdrawn,
			}, nil)

		w := performRequest(t, router, http.MethodPost, "/bids/bid1/withdraw", helpers.WithdrawBidRequest{BuyerID: "buyerA"})
		require.Equal(t, http.StatusOK, w.Code)
		envelope := decodeEnvelope(t, w)
		require.Equal(t, "bid withdrawn successfully", envelope["message"])
	})

	t.Run("withdraw_after_bidding_closed", func(t *testing.T) {
		mockService.EXPECT().
			WithdrawBid(gomock.Any(), "bid1", "buyerA").
			Return(model.Bid{}, auctionerrors.ErrPhaseConflict)

		w := performRequest(t, router, http.MethodPost, "/bids/bid1/withdraw", helpers.WithdrawBidRequest{BuyerID: "buyerA"})
		require.Equal(t, http.StatusConflict, w.Code)
	})
}

// Test GetRoomHandler
func TestGetRoomHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService, NewMockSweeperInterface(ctrl))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/leads/:lead_id/room", handler.GetRoomHandler)

	t.Run("success_get_room", func(t *testing.T) {
		mockService.EXPECT().
			GetRoom(gomock.Any(), "lead1").
			Return(model.AuctionRoom{
				LeadID:        "lead1",
				BidCount:      3,
				HighestBid:    decimal.RequireFromString("80"),
				HighestBidder: "buyerA",
				Phase:         model.PhaseReveal,
				Participants:  []string{"buyerA", "buyerB", "buyerA"},
			}, nil)

		w := performRequest(t, router, http.MethodGet, "/leads/lead1/room", nil)
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data, ok := envelope["data"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, float64(3), data["bid_count"])
		require.Equal(t, "80", data["highest_bid"])
		require.Equal(t, "buyerA", data["highest_bidder"])
		require.Equal(t, string(model.PhaseReveal), data["phase"])
	})

	t.Run("room_not_found", func(t *testing.T) {
		mockService.EXPECT().
			GetRoom(gomock.Any(), "missing").
			Return(model.AuctionRoom{}, auctionerrors.ErrRoomNotFound)

		w := performRequest(t, router, http.MethodGet, "/leads/missing/room", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test UpdatePreferencesHandler
func TestUpdatePreferencesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService, NewMockSweeperInterface(ctrl))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/buyers/:buyer_id/preferences", handler.UpdatePreferencesHandler)

	t.Run("success_update", func(t *testing.T) {
		mockService.EXPECT().
			UpdateBuyerPreferences(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, set model.BuyerPreferenceSet) (model.BuyerPreferenceSet, error) {
				require.Equal(t, "buyerA", set.BuyerID, "buyer comes from the URL, not the payload")
				set.PrefID = "pref1"
				set.CreatedAt = time.Now().UTC()
				return set, nil
			})

		w := performRequest(t, router, http.MethodPut, "/buyers/buyerA/preferences", helpers.PreferencesRequest{
			Vertical:      "insurance",
			AutoBid:       true,
			AutoBidAmount: decimal.RequireFromString("60"),
			Active:        true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data, ok := envelope["data"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "pref1", data["pref_id"])
		require.Equal(t, "buyerA", data["buyer_id"])
	})

	t.Run("service_validation_error", func(t *testing.T) {
		mockService.EXPECT().
			UpdateBuyerPreferences(gomock.Any(), gomock.Any()).
			Return(model.BuyerPreferenceSet{}, auctionerrors.ErrValidation)

		w := performRequest(t, router, http.MethodPut, "/buyers/buyerA/preferences", helpers.PreferencesRequest{
			Vertical: "insurance",
			AutoBid:  true,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Test SweepHandler
func TestSweepHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSweeper := NewMockSweeperInterface(ctrl)
	handler := NewAuctionHandler(NewMockAuctionServiceInterface(ctrl), mockSweeper)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin/sweep", handler.SweepHandler)

	mockSweeper.EXPECT().SweepNow(gomock.Any()).Return(2, nil)

	w := performRequest(t, router, http.MethodPost, "/admin/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(2), data["resolved"])
}
