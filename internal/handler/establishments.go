package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/utils"
)

func (h *Handler) GetAllEstablishments(w http.ResponseWriter, r *http.Request) {
	establishments, err := h.repository.GetAllEstablishments()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有餐厅成功", establishments)
}

func (h *Handler) CreateEstablishment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrganizationID uuid.UUID `json:"organizationID" validate:"required"`
		Name           string    `json:"name" validate:"required"`
		Slug           string    `json:"slug" validate:"required,slug"`
		Timezone       string    `json:"timezone"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	est := &domain.Establishment{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Slug:           req.Slug,
		Timezone:       req.Timezone,
	}
	if est.Timezone == "" {
		est.Timezone = h.config.Establishment.DefaultTimezone
	}
	if err := utils.ValidateTimezone(est.Timezone); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateEstablishment(est); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "establishments_slug_key":
				h.errorResponse(w, r, "该 slug 已被使用")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建餐厅成功", est)
}

func (h *Handler) GetEstablishment(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	h.successResponse(w, r, "获取餐厅成功", est)
}

func (h *Handler) UpdateEstablishment(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	var req struct {
		Name     *string `json:"name" validate:"omitempty,min=1"`
		Slug     *string `json:"slug" validate:"omitempty,slug"`
		Timezone *string `json:"timezone"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		est.Name = *req.Name
	}
	if req.Slug != nil {
		est.Slug = *req.Slug
	}
	if req.Timezone != nil {
		if err := utils.ValidateTimezone(*req.Timezone); err != nil {
			h.badRequest(w, r, err)
			return
		}
		est.Timezone = *req.Timezone
	}

	if err := h.repository.UpdateEstablishment(est); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "establishments_slug_key":
				h.errorResponse(w, r, "该 slug 已被使用")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新餐厅成功", est)
}

func (h *Handler) DeleteEstablishment(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	if err := h.repository.DeleteEstablishment(est.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除餐厅成功", nil)
}
