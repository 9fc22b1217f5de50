package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/utils"
)

type exceptionRequest struct {
	ExceptionType  string     `json:"exceptionType" validate:"required,oneof=period single_day service time_slots"`
	Date           *string    `json:"date"`
	StartDate      *string    `json:"startDate"`
	EndDate        *string    `json:"endDate"`
	SlotTemplateID *uuid.UUID `json:"slotTemplateID"`
	ClosedSlots    []int32    `json:"closedSlots" validate:"omitempty,dive,gte=0,lt=96"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (req *exceptionRequest) toException(est *domain.Establishment) *domain.Exception {
	e := &domain.Exception{
		EstablishmentID: est.ID,
		OrganizationID:  est.OrganizationID,
		ExceptionType:   domain.ExceptionType(req.ExceptionType),
		Date:            req.Date,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		SlotTemplateID:  req.SlotTemplateID,
		ClosedSlots:     req.ClosedSlots,
		Reason:          req.Reason,
		Status:          domain.ExceptionStatus(req.Status),
	}
	if e.Status == "" {
		e.Status = domain.ExceptionStatusActive
	}
	utils.NormalizeException(e)
	return e
}

func (h *Handler) GetAllExceptions(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	var (
		exceptions []domain.Exception
		err        error
	)
	if s := r.URL.Query().Get("date"); s != "" {
		date, parseErr := availability.ParseDate(s)
		if parseErr != nil {
			h.badRequest(w, r, parseErr)
			return
		}
		exceptions, err = h.repository.GetExceptionsForDate(est.ID, date.String())
	} else {
		exceptions, err = h.repository.GetExceptionsByEstablishment(est.ID)
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有例外成功", exceptions)
}

func (h *Handler) CreateException(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	var req exceptionRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	e := req.toException(est)

	templates, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateException(e, templates); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateException(e); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建例外成功", e)
}

// PreviewExceptionImpact 计算一个例外在某天会关闭多少时间点，不会保存该例外
func (h *Handler) PreviewExceptionImpact(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	var req exceptionRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	e := req.toException(est)

	date, err := impactDate(r, est, e)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	templates, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	report, err := availability.Impact(*e, templates, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "计算例外影响成功", report)
}

// impactDate 优先使用查询参数，其次是例外自身的日期
func impactDate(r *http.Request, est *domain.Establishment, e *domain.Exception) (availability.Date, error) {
	if r.URL.Query().Get("date") != "" {
		return dateParam(r, est)
	}
	switch {
	case e.Date != nil:
		return availability.ParseDate(*e.Date)
	case e.StartDate != nil:
		return availability.ParseDate(*e.StartDate)
	default:
		return today(est), nil
	}
}

func (h *Handler) GetException(w http.ResponseWriter, r *http.Request) {
	e := r.Context().Value(ExceptionCtx).(*domain.Exception)

	h.successResponse(w, r, "获取例外成功", e)
}

func (h *Handler) UpdateException(w http.ResponseWriter, r *http.Request) {
	e := r.Context().Value(ExceptionCtx).(*domain.Exception)

	var req struct {
		Reason *string `json:"reason"`
		Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Reason != nil {
		e.Reason = *req.Reason
	}
	if req.Status != nil {
		e.Status = domain.ExceptionStatus(*req.Status)
	}

	if err := h.repository.UpdateException(e); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新例外成功", e)
}

func (h *Handler) DeleteException(w http.ResponseWriter, r *http.Request) {
	e := r.Context().Value(ExceptionCtx).(*domain.Exception)

	if err := h.repository.DeleteException(e.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除例外成功", nil)
}
