package handler

import (
	"net/http"
	"sync"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/pkg/httpcontext"
	complianceUC "github.com/visahub/backend/usecase/compliance"
	profileUC "github.com/visahub/backend/usecase/profile"
)

// ComplianceHandler triggers checklist generation. It owns the
// single-in-flight latch: the engine itself does not guard against
// concurrent duplicate invocations, the caller must.
type ComplianceHandler struct {
	baseHandler
	engine   *complianceUC.Engine
	profiles *profileUC.UseCase

	mu         sync.Mutex
	submitting map[string]bool
}

func NewComplianceHandler(engine *complianceUC.Engine, profiles *profileUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		profiles:    profiles,
		submitting:  map[string]bool{},
	}
}

// @Summary Generate compliance checklist
// @Tags compliance
// @Router /api/v1/compliance/generate [post]
func (h *ComplianceHandler) Generate(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	if !h.begin(userID) {
		h.respondError(ctx, domain.ErrGenerationBusy)
		return
	}
	defer h.finish(userID)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.profiles.GetProfile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	tasks, err := h.engine.Generate(stdCtx, profile)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

func (h *ComplianceHandler) begin(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.submitting[userID] {
		return false
	}
	h.submitting[userID] = true
	return true
}

func (h *ComplianceHandler) finish(userID string) {
	h.mu.Lock()
	delete(h.submitting, userID)
	h.mu.Unlock()
}
