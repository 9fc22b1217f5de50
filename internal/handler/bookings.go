package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/metrics"
)

func (h *Handler) publishBookingEvent(eventType domain.BookingEventType, b *domain.Booking) error {
	body, err := json.Marshal(domain.BookingEvent{Type: eventType, Booking: b})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.eventChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	date, err := dateParam(r, est)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	bookings, err := h.repository.GetBookingsByDate(est.ID, date.String())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预订成功", bookings)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(BookingCtx).(*domain.Booking)

	h.successResponse(w, r, "获取预订成功", b)
}

// CreateBooking 在写入前会用最新的模板和例外重新计算一次该时间点是否可预订以及剩余座位
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	var req struct {
		SlotTemplateID uuid.UUID `json:"slotTemplateID" validate:"required"`
		Date           string    `json:"date" validate:"required"`
		Time           string    `json:"time" validate:"required"`
		PartySize      int32     `json:"partySize" validate:"required,gte=1"`
		CustomerName   string    `json:"customerName" validate:"required"`
		CustomerEmail  string    `json:"customerEmail" validate:"omitempty,email"`
		CustomerPhone  string    `json:"customerPhone"`
		Notes          string    `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.PartySize > h.config.Booking.MaxPartySize {
		h.errorResponse(w, r, fmt.Sprintf("单次预订人数不能超过 %d 人", h.config.Booking.MaxPartySize))
		return
	}

	date, clock, err := parseBookingTarget(req.Date, req.Time, today(est))
	if err != nil {
		h.rejectBooking(w, r, err)
		return
	}

	// 同一时间点同时只允许一个预订请求进行检查和写入
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	lockKey := bookingLockKey(est.ID, date, clock)
	token, locked, err := acquireLock(ctx, h.redisClient, lockKey, bookingLockTTL(h.config))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		metrics.IncBooking(metrics.BookingLocked)
		h.errorResponse(w, r, "该时间点正在被其他人预订，请稍后重试")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()

		if err := releaseLock(ctx, h.redisClient, lockKey, token); err != nil {
			slog.Error("释放预订锁失败", "key", lockKey, "error", err)
		}
	}()

	groups, err := h.resolve(est, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	booked, err := h.repository.GetBookedPartySize(req.SlotTemplateID, date.String(), clock)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if _, err := checkBookable(groups, req.SlotTemplateID, clock, booked, req.PartySize); err != nil {
		h.rejectBooking(w, r, err)
		return
	}

	b := &domain.Booking{
		EstablishmentID: est.ID,
		SlotTemplateID:  req.SlotTemplateID,
		Date:            date.String(),
		Time:            clock,
		PartySize:       req.PartySize,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
		Status:          domain.BookingStatusConfirmed,
	}
	if err := h.repository.CreateBooking(b); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	metrics.IncBooking(metrics.BookingConfirmed)

	// 预订已经写入，消息发送失败只记录日志
	if err := h.publishBookingEvent(domain.BookingEventCreated, b); err != nil {
		slog.Error("发送预订消息失败", "booking", b.ID, "error", err)
	}

	h.successResponse(w, r, "预订成功", b)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(BookingCtx).(*domain.Booking)

	if b.Status == domain.BookingStatusCancelled {
		h.errorResponse(w, r, "该预订已取消")
		return
	}

	b.Status = domain.BookingStatusCancelled
	if err := h.repository.UpdateBookingStatus(b); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	metrics.IncBooking(metrics.BookingCancelled)

	if err := h.publishBookingEvent(domain.BookingEventCancelled, b); err != nil {
		slog.Error("发送预订消息失败", "booking", b.ID, "error", err)
	}

	h.successResponse(w, r, "取消预订成功", b)
}
