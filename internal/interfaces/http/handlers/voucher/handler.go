// Package voucher exposes the voucher store over HTTP.
package voucher

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lnpos/voucherd/internal/application/voucher/usecases"
	domain "github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/shared/errors"
	"github.com/lnpos/voucherd/internal/shared/logger"
	"github.com/lnpos/voucherd/internal/shared/utils"
)

// Store is the subset of the voucher store the handler calls.
type Store interface {
	CreateVoucher(ctx context.Context, cmd usecases.CreateVoucherCommand) (*domain.Voucher, error)
	GetVoucher(ctx context.Context, id string) (*domain.Voucher, error)
	GetVoucherWithStatus(ctx context.Context, id string) (*domain.Voucher, error)
	ClaimVoucher(ctx context.Context, id string) (bool, error)
	UnclaimVoucher(ctx context.Context, id string) (bool, error)
	CancelVoucher(ctx context.Context, id string) (bool, error)
	GetUnclaimedCountByWallet(ctx context.Context, walletID string) (int, error)
	ListVouchers(ctx context.Context) ([]*domain.Voucher, error)
	GetStats(ctx context.Context) (domain.Stats, error)
	RevealIssuerRef(ctx context.Context, v *domain.Voucher) (string, error)
}

type VoucherHandler struct {
	store           Store
	defaultExpiryID string
	logger          logger.Interface
}

func NewVoucherHandler(store Store, defaultExpiryID string, logger logger.Interface) *VoucherHandler {
	if defaultExpiryID == "" {
		defaultExpiryID = vo.DefaultExpiryID
	}
	return &VoucherHandler{
		store:           store,
		defaultExpiryID: defaultExpiryID,
		logger:          logger,
	}
}

// CreateVoucher handles POST /vouchers
// @Summary Issue a voucher
// @Description Create a single-use voucher for a wallet
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucher body CreateVoucherRequest true "Voucher data"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /vouchers [post]
func (h *VoucherHandler) CreateVoucher(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create voucher", "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	v, err := h.store.CreateVoucher(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toVoucherResponse(v), "Voucher created successfully")
}

// GetVoucher handles GET /vouchers/:id
// @Summary Get a redeemable voucher
// @Description Returns the voucher only while it can still be claimed
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /vouchers/{id} [get]
func (h *VoucherHandler) GetVoucher(c *gin.Context) {
	id, ok := h.voucherID(c)
	if !ok {
		return
	}

	v, err := h.store.GetVoucher(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if v == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("voucher not found or no longer redeemable"))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toVoucherResponse(v))
}

// GetVoucherStatus handles GET /vouchers/:id/status
// @Summary Get a voucher in any state
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /vouchers/{id}/status [get]
func (h *VoucherHandler) GetVoucherStatus(c *gin.Context) {
	id, ok := h.voucherID(c)
	if !ok {
		return
	}

	v, err := h.store.GetVoucherWithStatus(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if v == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("voucher not found"))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toVoucherResponse(v))
}

// RevealIssuerRef handles GET /vouchers/:id/issuer-ref
// @Summary Release the issuer reference of a claimed voucher
// @Description The caller that won the claim fetches the credential it forwards the payment with.
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /vouchers/{id}/issuer-ref [get]
func (h *VoucherHandler) RevealIssuerRef(c *gin.Context) {
	id, ok := h.voucherID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	v, err := h.store.GetVoucherWithStatus(ctx, id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if v == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("voucher not found"))
		return
	}
	if v.Status() != vo.StatusClaimed {
		utils.ErrorResponseWithError(c, errors.NewConflictError("voucher must be claimed before its issuer reference is released"))
		return
	}

	ref, err := h.store.RevealIssuerRef(ctx, v)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("issuer reference released", "voucher_id", id)
	utils.SuccessResponse(c, http.StatusOK, "", IssuerRefResponse{ID: id, IssuerRef: ref})
}

// ListVouchers handles GET /vouchers
// @Summary List vouchers
// @Description Lists every stored voucher, newest first
// @Tags vouchers
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /vouchers [get]
func (h *VoucherHandler) ListVouchers(c *gin.Context) {
	vouchers, err := h.store.ListVouchers(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, toVoucherResponses(vouchers), len(vouchers))
}

// GetStats handles GET /vouchers/stats
// @Summary Voucher counts by status
// @Tags vouchers
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /vouchers/stats [get]
func (h *VoucherHandler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

// ClaimVoucher handles POST /vouchers/:id/claim
// @Summary Claim a voucher
// @Description At most one caller succeeds. A 503 with type outcome_unknown means the claim may have been applied.
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /vouchers/{id}/claim [post]
func (h *VoucherHandler) ClaimVoucher(c *gin.Context) {
	h.transition(c, h.store.ClaimVoucher, "voucher is not redeemable")
}

// UnclaimVoucher handles POST /vouchers/:id/unclaim
// @Summary Roll back a claim
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /vouchers/{id}/unclaim [post]
func (h *VoucherHandler) UnclaimVoucher(c *gin.Context) {
	h.transition(c, h.store.UnclaimVoucher, "voucher is not claimed or has expired")
}

// CancelVoucher handles POST /vouchers/:id/cancel
// @Summary Cancel an unclaimed voucher
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /vouchers/{id}/cancel [post]
func (h *VoucherHandler) CancelVoucher(c *gin.Context) {
	h.transition(c, h.store.CancelVoucher, "voucher cannot be cancelled")
}

// GetUnclaimedCount handles GET /wallets/:wallet_id/unclaimed-count
// @Summary Count a wallet's redeemable vouchers
// @Tags wallets
// @Produce json
// @Param wallet_id path string true "Wallet ID"
// @Success 200 {object} utils.APIResponse
// @Router /wallets/{wallet_id}/unclaimed-count [get]
func (h *VoucherHandler) GetUnclaimedCount(c *gin.Context) {
	walletID := c.Param("wallet_id")

	count, err := h.store.GetUnclaimedCountByWallet(c.Request.Context(), walletID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", UnclaimedCountResponse{WalletID: walletID, Count: count})
}

// ListExpiryPresets handles GET /expiry-presets
// @Summary Selectable voucher lifetimes
// @Tags vouchers
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /expiry-presets [get]
func (h *VoucherHandler) ListExpiryPresets(c *gin.Context) {
	presets := toExpiryPresetResponses(vo.VisiblePresets(), h.defaultExpiryID)
	utils.ListSuccessResponse(c, presets, len(presets))
}

func (h *VoucherHandler) transition(c *gin.Context, op func(context.Context, string) (bool, error), rejected string) {
	id, ok := h.voucherID(c)
	if !ok {
		return
	}

	applied, err := op(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if !applied {
		utils.ErrorResponseWithError(c, errors.NewConflictError(rejected))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", TransitionResponse{ID: id, Applied: true})
}

func (h *VoucherHandler) voucherID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := utils.ValidateVar("id", id, "required,voucherid"); err != nil {
		utils.ErrorResponseWithError(c, err)
		return "", false
	}
	return id, true
}
