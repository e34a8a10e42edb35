package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"placement-backoffice/internal/delivery/http/response"
	"placement-backoffice/internal/domain"
	"placement-backoffice/pkg/apperror"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application lifecycle routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := r.Group("/applications")
	{
		applications.GET("/:id", handler.GetDetail)
		applications.PATCH("/:id/status", handler.UpdateStatus)
		applications.GET("/:id/lifecycle-history", handler.GetLifecycleHistory)
	}
}

func tenantFrom(c *gin.Context) (companyID int64, actor string) {
	return c.GetInt64(string(domain.KeyCompanyID)), c.GetString(string(domain.KeyUserID))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid application ID"))
		return 0, false
	}
	return id, true
}

// GetDetail godoc
// @Summary      Get application detail
// @Description  Application with its payment/cost ledgers and document checklist
// @Tags         applications
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response{data=domain.ApplicationDetail}
// @Failure      404 {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetDetail(c *gin.Context) {
	companyID, _ := tenantFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.applicationUC.GetDetail(c, companyID, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application detail retrieved", detail)
}

// UpdateStatusRequest advances an application one step in the workflow. The
// date fields are required by specific target statuses.
type UpdateStatusRequest struct {
	Status              string     `json:"status" binding:"required"`
	ExactArrivalDate    *time.Time `json:"exact_arrival_date"`
	LaborPermitDate     *time.Time `json:"labor_permit_date"`
	ResidencyPermitDate *time.Time `json:"residency_permit_date"`
}

// UpdateStatus godoc
// @Summary      Advance application status
// @Description  Move the application one step forward in the workflow
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "Target status and required dates"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	companyID, actor := tenantFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app, err := h.applicationUC.AdvanceStatus(c, companyID, actor, id,
		domain.ApplicationStatus(req.Status), domain.StatusDates{
			ExactArrivalDate:    req.ExactArrivalDate,
			LaborPermitDate:     req.LaborPermitDate,
			ResidencyPermitDate: req.ResidencyPermitDate,
		})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", app)
}

// GetLifecycleHistory godoc
// @Summary      Get lifecycle history
// @Description  Ordered, append-only audit trail of the application
// @Tags         applications
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response{data=[]domain.LifecycleEvent}
// @Failure      404 {object}  response.Response
// @Router       /applications/{id}/lifecycle-history [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetLifecycleHistory(c *gin.Context) {
	companyID, _ := tenantFrom(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	events, err := h.applicationUC.GetLifecycleHistory(c, companyID, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Lifecycle history retrieved", events)
}
