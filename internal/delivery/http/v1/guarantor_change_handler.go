package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"placement-backoffice/internal/delivery/http/response"
	"placement-backoffice/internal/domain"
	"placement-backoffice/pkg/apperror"
)

type GuarantorChangeHandler struct {
	guarantorUC domain.GuarantorChangeUsecase
}

// NewGuarantorChangeHandler registers client-transfer routes
func NewGuarantorChangeHandler(r *gin.RouterGroup, guarantorUC domain.GuarantorChangeUsecase) {
	handler := &GuarantorChangeHandler{guarantorUC: guarantorUC}

	transfers := r.Group("/guarantor-changes")
	{
		transfers.POST("/calculate-refund", handler.CalculateRefund)
		transfers.POST("/process", handler.Process)
	}
}

// GuarantorRefundRequest estimates the credit carried into a transfer
type GuarantorRefundRequest struct {
	ApplicationID      int64            `json:"application_id" binding:"required"`
	CandidateInLebanon bool             `json:"candidate_in_lebanon"`
	CandidateDeparted  bool             `json:"candidate_departed"`
	CustomRefundAmount *decimal.Decimal `json:"custom_refund_amount"`
	OverrideFee        *decimal.Decimal `json:"override_fee"`
}

// CalculateRefund godoc
// @Summary      Calculate a transfer credit
// @Description  Estimate the refund that would carry over to a new guarantor
// @Tags         guarantor-changes
// @Accept       json
// @Produce      json
// @Param        body  body      GuarantorRefundRequest  true  "Calculation input"
// @Success      200   {object}  response.Response{data=domain.RefundCalculation}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /guarantor-changes/calculate-refund [post]
// @Security     BearerAuth
func (h *GuarantorChangeHandler) CalculateRefund(c *gin.Context) {
	companyID, _ := tenantFrom(c)

	var req GuarantorRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	calc, err := h.guarantorUC.CalculateRefund(c, companyID, req.ApplicationID,
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
	response.Success(c, http.StatusOK, "Transfer credit calculated", calc)
}

// GuarantorChangeProcessRequest commits a transfer to a new client
type GuarantorChangeProcessRequest struct {
	ApplicationID      int64            `json:"application_id" binding:"required"`
	ToClientID         int64            `json:"to_client_id" binding:"required"`
	Reason             string           `json:"reason" binding:"required"`
	CandidateInLebanon bool             `json:"candidate_in_lebanon"`
	CandidateDeparted  bool             `json:"candidate_departed"`
	CustomRefundAmount *decimal.Decimal `json:"custom_refund_amount"`
	OverrideFee        *decimal.Decimal `json:"override_fee"`
	Notes              string           `json:"notes"`
}

// Process godoc
// @Summary      Process a guarantor change
// @Description  Cancel the original application and create its replacement under the new client
// @Tags         guarantor-changes
// @Accept       json
// @Produce      json
// @Param        body  body      GuarantorChangeProcessRequest  true  "Transfer input"
// @Success      200   {object}  response.Response{data=domain.GuarantorChangeResult}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /guarantor-changes/process [post]
// @Security     BearerAuth
func (h *GuarantorChangeHandler) Process(c *gin.Context) {
	companyID, actor := tenantFrom(c)

	var req GuarantorChangeProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	result, err := h.guarantorUC.Process(c, companyID, actor, domain.GuarantorChangeRequest{
		ApplicationID: req.ApplicationID,
		ToClientID:    req.ToClientID,
		Reason:        req.Reason,
		Flags: domain.CandidateFlags{
			CandidateInLebanon: req.CandidateInLebanon,
			CandidateDeparted:  req.CandidateDeparted,
		},
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
	response.Success(c, http.StatusOK, "Guarantor change processed", result)
}
