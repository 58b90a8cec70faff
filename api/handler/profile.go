package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/visahub/backend/api/transport"
	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/pkg/dates"
	"github.com/visahub/backend/pkg/httpcontext"
	profileUC "github.com/visahub/backend/usecase/profile"
)

type ProfileHandler struct {
	baseHandler
	uc *profileUC.UseCase
}

func NewProfileHandler(uc *profileUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get profile
// @Tags profile
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// @Summary Update profile
// @Tags profile
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, userID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondError(ctx, err)
			return
		}
		profile = &domain.Profile{ID: userID}
	}

	if err := applyProfileUpdate(profile, req); err != nil {
		h.respondError(ctx, err)
		return
	}

	updated, err := h.uc.UpdateProfile(stdCtx, profile)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

func applyProfileUpdate(profile *domain.Profile, req transport.ProfileUpdateRequest) error {
	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Email != nil {
		profile.Email = *req.Email
	}
	if req.VisaType != nil {
		profile.VisaType = domain.VisaType(*req.VisaType)
	}
	if req.EmploymentStatus != nil {
		profile.EmploymentStatus = *req.EmploymentStatus
	}
	if req.OPTActive != nil {
		profile.OPTActive = *req.OPTActive
	}
	if req.STEMOPTActive != nil {
		profile.STEMOPTActive = *req.STEMOPTActive
	}

	for _, field := range []struct {
		value  *string
		target **time.Time
		name   string
	}{
		{req.EntryDate, &profile.EntryDate, "entry_date"},
		{req.GraduationDate, &profile.GraduationDate, "graduation_date"},
		{req.TransferDate, &profile.TransferDate, "transfer_date"},
	} {
		if field.value == nil {
			continue
		}
		if *field.value == "" {
			*field.target = nil
			continue
		}
		parsed, ok := dates.Parse(*field.value)
		if !ok {
			return domain.NewError(domain.ErrCodeInvalid, field.name+" is not a valid calendar date")
		}
		*field.target = &parsed
	}
	return nil
}
