package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/utils"
)

func (h *Handler) GetAllSlotTemplates(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	sts, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有时段模板成功", sts)
}

func (h *Handler) CreateSlotTemplate(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	var req struct {
		DayOfWeek    *int32 `json:"dayOfWeek" validate:"required,gte=0,lte=6"`
		StartTime    string `json:"startTime" validate:"required"`
		EndTime      string `json:"endTime" validate:"required"`
		ServiceName  string `json:"serviceName"`
		MaxCapacity  int32  `json:"maxCapacity" validate:"gte=0"`
		DisplayOrder int32  `json:"displayOrder"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.SlotTemplate{
		EstablishmentID: est.ID,
		DayOfWeek:       *req.DayOfWeek,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		ServiceName:     req.ServiceName,
		MaxCapacity:     req.MaxCapacity,
		DisplayOrder:    req.DisplayOrder,
	}
	if st.MaxCapacity == 0 {
		st.MaxCapacity = availability.DefaultMaxCapacity
	}

	others, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateSlotTemplate(st, others); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateSlotTemplate(st); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建时段模板成功", st)
}

func (h *Handler) GetSlotTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(SlotTemplateCtx).(*domain.SlotTemplate)

	h.successResponse(w, r, "获取时段模板成功", st)
}

func (h *Handler) UpdateSlotTemplate(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)
	st := r.Context().Value(SlotTemplateCtx).(*domain.SlotTemplate)

	var req struct {
		DayOfWeek    *int32  `json:"dayOfWeek" validate:"omitempty,gte=0,lte=6"`
		StartTime    *string `json:"startTime"`
		EndTime      *string `json:"endTime"`
		ServiceName  *string `json:"serviceName"`
		MaxCapacity  *int32  `json:"maxCapacity" validate:"omitempty,gte=1"`
		DisplayOrder *int32  `json:"displayOrder"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.DayOfWeek != nil {
		st.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		st.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		st.EndTime = *req.EndTime
	}
	if req.ServiceName != nil {
		st.ServiceName = *req.ServiceName
	}
	if req.MaxCapacity != nil {
		st.MaxCapacity = *req.MaxCapacity
	}
	if req.DisplayOrder != nil {
		st.DisplayOrder = *req.DisplayOrder
	}

	others, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateSlotTemplate(st, others); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateSlotTemplate(st); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新时段模板成功", st)
}

func (h *Handler) DeleteSlotTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(SlotTemplateCtx).(*domain.SlotTemplate)

	if err := h.repository.DeleteSlotTemplate(st.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "bookings_slot_template_id_fkey":
				h.errorResponse(w, r, "该时段模板已有预订，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除时段模板成功", nil)
}
