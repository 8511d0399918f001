package intake

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"
)

// Handler handles lead intake HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleSubmitLead accepts an inbound lead event.
// POST /api/v1/businesses/:business/leads
func (h *Handler) HandleSubmitLead(c *gin.Context) {
	var req InboundLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	resp, err := h.service.SubmitLead(c.Request.Context(), c.Param("business"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// HandleGetLead returns one lead record.
// GET /api/v1/businesses/:business/leads/:leadId
func (h *Handler) HandleGetLead(c *gin.Context) {
	resp, err := h.service.GetLead(c.Request.Context(), c.Param("business"), c.Param("leadId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// HandleListLeadMessages returns a lead's generated follow-ups.
// GET /api/v1/businesses/:business/leads/:leadId/messages
func (h *Handler) HandleListLeadMessages(c *gin.Context) {
	resp, err := h.service.ListLeadMessages(c.Request.Context(), c.Param("business"), c.Param("leadId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"messages": resp})
}
