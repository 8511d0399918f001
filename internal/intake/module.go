// Package intake provides the lead intake bounded context module: the
// public API surface where lead events enter the system.
package intake

import (
	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the intake module's dependencies.
func NewModule(store Store, biz *bizconfig.Reader, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	service := NewService(store, biz, bus, log)
	return &Module{handler: NewHandler(service, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// RegisterRoutes mounts intake routes. All of them sit behind the
// intake-key middleware and the per-IP rate limit.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Intake.Group("/businesses/:business/leads")
	group.POST("", m.handler.HandleSubmitLead)
	group.GET("/:leadId", m.handler.HandleGetLead)
	group.GET("/:leadId/messages", m.handler.HandleListLeadMessages)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
