package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"placement-backoffice/internal/delivery/http/response"
	"placement-backoffice/internal/domain"
	"placement-backoffice/pkg/apperror"
)

type SettingsHandler struct {
	settingsUC domain.SettingsUsecase
}

// NewSettingsHandler registers the business-settings routes (Super Admin only)
func NewSettingsHandler(r *gin.RouterGroup, settingsUC domain.SettingsUsecase) {
	handler := &SettingsHandler{settingsUC: settingsUC}

	settings := r.Group("/business-settings")
	{
		settings.GET("/cancellation", handler.ListCancellationSettings)
		settings.POST("/cancellation", handler.CreateCancellationSetting)
		settings.PUT("/cancellation/:id", handler.UpdateCancellationSetting)
		settings.GET("/lawyer-service", handler.GetLawyerService)
		settings.PUT("/lawyer-service", handler.PutLawyerService)
	}
}

func requireSuperAdmin(c *gin.Context) bool {
	if c.GetString(string(domain.KeyUserRole)) != "super_admin" {
		c.Error(apperror.Forbidden("Only super admins can manage business settings"))
		return false
	}
	return true
}

// ListCancellationSettings godoc
// @Summary      List cancellation settings
// @Tags         business-settings
// @Produce      json
// @Success      200 {object}  response.Response{data=[]domain.CancellationSetting}
// @Failure      403 {object}  response.Response
// @Router       /business-settings/cancellation [get]
// @Security     BearerAuth
func (h *SettingsHandler) ListCancellationSettings(c *gin.Context) {
	if !requireSuperAdmin(c) {
		return
	}
	companyID, _ := tenantFrom(c)

	settings, err := h.settingsUC.ListCancellationSettings(c, companyID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Cancellation settings retrieved", settings)
}

// CancellationSettingRequest creates or replaces a refund policy
type CancellationSettingRequest struct {
	CancellationType  string           `json:"cancellation_type" binding:"required"`
	PenaltyFee        decimal.Decimal  `json:"penalty_fee"`
	RefundPercentage  decimal.Decimal  `json:"refund_percentage"`
	NonRefundableFees []string         `json:"non_refundable_fees"`
	MonthlyServiceFee decimal.Decimal  `json:"monthly_service_fee"`
	MaxRefundAmount   *decimal.Decimal `json:"max_refund_amount"`
	Active            bool             `json:"active"`
}

func (r CancellationSettingRequest) toDomain(companyID int64) *domain.CancellationSetting {
	fees := r.NonRefundableFees
	if fees == nil {
		fees = []string{}
	}
	return &domain.CancellationSetting{
		CompanyID:         companyID,
		CancellationType:  domain.CancellationType(r.CancellationType),
		PenaltyFee:        r.PenaltyFee,
		RefundPercentage:  r.RefundPercentage,
		NonRefundableFees: fees,
		MonthlyServiceFee: r.MonthlyServiceFee,
		MaxRefundAmount:   r.MaxRefundAmount,
		Active:            r.Active,
	}
}

// CreateCancellationSetting godoc
// @Summary      Create a cancellation setting
// @Description  The new setting becomes the active policy for its type
// @Tags         business-settings
// @Accept       json
// @Produce      json
// @Param        body  body      CancellationSettingRequest  true  "Setting"
// @Success      201   {object}  response.Response{data=domain.CancellationSetting}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /business-settings/cancellation [post]
// @Security     BearerAuth
func (h *SettingsHandler) CreateCancellationSetting(c *gin.Context) {
	if !requireSuperAdmin(c) {
		return
	}
	companyID, _ := tenantFrom(c)

	var req CancellationSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	setting, err := h.settingsUC.CreateCancellationSetting(c, req.toDomain(companyID))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Cancellation setting created", setting)
}

// UpdateCancellationSetting godoc
// @Summary      Update a cancellation setting
// @Tags         business-settings
// @Accept       json
// @Produce      json
// @Param        id    path      int                         true  "Setting ID"
// @Param        body  body      CancellationSettingRequest  true  "Setting"
// @Success      200   {object}  response.Response{data=domain.CancellationSetting}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /business-settings/cancellation/{id} [put]
// @Security     BearerAuth
func (h *SettingsHandler) UpdateCancellationSetting(c *gin.Context) {
	if !requireSuperAdmin(c) {
		return
	}
	companyID, _ := tenantFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid setting ID"))
		return
	}

	var req CancellationSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	setting := req.toDomain(companyID)
	setting.ID = id
	updated, err := h.settingsUC.UpdateCancellationSetting(c, setting)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Cancellation setting updated", updated)
}

// GetLawyerService godoc
// @Summary      Get the lawyer service fee/charge pair
// @Tags         business-settings
// @Produce      json
// @Success      200 {object}  response.Response{data=domain.LawyerServiceSetting}
// @Failure      403 {object}  response.Response
// @Router       /business-settings/lawyer-service [get]
// @Security     BearerAuth
func (h *SettingsHandler) GetLawyerService(c *gin.Context) {
	if !requireSuperAdmin(c) {
		return
	}
	companyID, _ := tenantFrom(c)

	setting, err := h.settingsUC.GetLawyerService(c, companyID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Lawyer service setting retrieved", setting)
}

// LawyerServiceRequest sets the lawyer service fee/charge pair
type LawyerServiceRequest struct {
	Fee    decimal.Decimal `json:"fee"`
	Charge decimal.Decimal `json:"charge"`
}

// PutLawyerService godoc
// @Summary      Set the lawyer service fee/charge pair
// @Tags         business-settings
// @Accept       json
// @Produce      json
// @Param        body  body      LawyerServiceRequest  true  "Fee/charge pair"
// @Success      200   {object}  response.Response{data=domain.LawyerServiceSetting}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /business-settings/lawyer-service [put]
// @Security     BearerAuth
func (h *SettingsHandler) PutLawyerService(c *gin.Context) {
	if !requireSuperAdmin(c) {
		return
	}
	companyID, _ := tenantFrom(c)

	var req LawyerServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	setting, err := h.settingsUC.PutLawyerService(c, &domain.LawyerServiceSetting{
		CompanyID: companyID,
		Fee:       req.Fee,
		Charge:    req.Charge,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Lawyer service setting updated", setting)
}
