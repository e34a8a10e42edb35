package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"placement-backoffice/internal/delivery/http/response"
	"placement-backoffice/internal/domain"
	"placement-backoffice/pkg/apperror"
)

type CancellationHandler struct {
	cancellationUC domain.CancellationUsecase
}

// NewCancellationHandler registers cancellation routes
func NewCancellationHandler(r *gin.RouterGroup, cancellationUC domain.CancellationUsecase) {
	handler := &CancellationHandler{cancellationUC: cancellationUC}

	applications := r.Group("/applications")
	{
		applications.GET("/:id/cancellation-options", handler.GetOptions)
		applications.POST("/calculate-refund", handler.CalculateRefund)
		applications.POST("/:id/cancel", handler.Cancel)
	}
}

// GetOptions godoc
// @Summary      Get cancellation options
// @Description  Legal cancellation types for the current status, warnings, and a refund estimate
// @Tags         cancellations
// @Produce      json
// @Param        id                    path   int   true   "Application ID"
// @Param        candidate_in_lebanon  query  bool  false  "Candidate currently in Lebanon"
// @Param        candidate_departed    query  bool  false  "Candidate already departed"
// @Success      200 {object}  response.Response{data=domain.CancellationOptions}
// @Failure      404 {object}  response.Response
// @Router       /applications/{id}/cancellation-options [get]
// @Security     BearerAuth
func (h *CancellationHandler) GetOptions(c *gin.Context) {
	companyID, _ := tenantFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	flags := domain.CandidateFlags{
		CandidateInLebanon: c.Query("candidate_in_lebanon") == "true",
		CandidateDeparted:  c.Query("candidate_departed") == "true",
	}
	options, err := h.cancellationUC.GetOptions(c, companyID, id, flags)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Cancellation options retrieved", options)
}

// CalculateRefundRequest is the what-if refund calculation payload
type CalculateRefundRequest struct {
	ApplicationID      int64            `json:"application_id" binding:"required"`
	CancellationType   string           `json:"cancellation_type" binding:"required,oneof=pre_arrival post_arrival_within_3_months post_arrival_after_3_months candidate_cancellation"`
	CandidateInLebanon bool             `json:"candidate_in_lebanon"`
	CandidateDeparted  bool             `json:"candidate_departed"`
	CustomRefundAmount *decimal.Decimal `json:"custom_refund_amount"`
	OverrideFee        *decimal.Decimal `json:"override_fee"`
}

// CalculateRefund godoc
// @Summary      Calculate a refund
// @Description  Replay the payment ledger against the active policy for a cancellation type
// @Tags         cancellations
// @Accept       json
// @Produce      json
// @Param        body  body      CalculateRefundRequest  true  "Calculation input"
// @Success      200   {object}  response.Response{data=domain.RefundCalculation}
// @Failure      400   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /applications/calculate-refund [post]
// @Security     BearerAuth
func (h *CancellationHandler) CalculateRefund(c *gin.Context) {
	companyID, _ := tenantFrom(c)

	var req CalculateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	calc, err := h.cancellationUC.CalculateRefund(c, companyID, req.ApplicationID,
		domain.CancellationType(req.CancellationType),
		domain.CandidateFlags{
			CandidateInLebanon: req.CandidateInLebanon,
			CandidateDeparted:  req.CandidateDeparted,
		},
		domain.RefundOverrides{
			CustomRefundAmount: req.CustomRefundAmount,
			OverrideFee:        req.OverrideFee,
		})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Refund calculated", calc)
}

// CancelRequest is the commit-time cancellation payload
type CancelRequest struct {
	CancellationType   string           `json:"cancellation_type" binding:"required,oneof=pre_arrival post_arrival_within_3_months post_arrival_after_3_months candidate_cancellation"`
	Reason             string           `json:"reason" binding:"required"`
	CandidateInLebanon bool             `json:"candidate_in_lebanon"`
	CandidateDeparted  bool             `json:"candidate_departed"`
	NextAction         string           `json:"next_action" binding:"omitempty,oneof=move_to_client deport keep_waiting"`
	ToClientID         *int64           `json:"to_client_id"`
	CustomRefundAmount *decimal.Decimal `json:"custom_refund_amount"`
	OverrideFee        *decimal.Decimal `json:"override_fee"`
	Notes              string           `json:"notes"`
}

// Cancel godoc
// @Summary      Cancel an application
// @Description  Finalize the refund, transition to a terminal status and fan out side effects atomically
// @Tags         cancellations
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Application ID"
// @Param        body  body      CancelRequest  true  "Cancellation input"
// @Success      200   {object}  response.Response{data=domain.CancelResult}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /applications/{id}/cancel [post]
// @Security     BearerAuth
func (h *CancellationHandler) Cancel(c *gin.Context) {
	companyID, actor := tenantFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	result, err := h.cancellationUC.Cancel(c, companyID, actor, domain.CancelRequest{
		ApplicationID:    id,
		CancellationType: domain.CancellationType(req.CancellationType),
		Reason:           req.Reason,
		Flags: domain.CandidateFlags{
			CandidateInLebanon: req.CandidateInLebanon,
			CandidateDeparted:  req.CandidateDeparted,
		},
		NextAction: domain.NextAction(req.NextAction),
		ToClientID: req.ToClientID,
		Overrides: domain.RefundOverrides{
			CustomRefundAmount: req.CustomRefundAmount,
			OverrideFee:        req.OverrideFee,
		},
		Notes: req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application cancelled", result)
}
