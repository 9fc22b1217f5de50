package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/metrics"
)

// today 返回餐厅所在时区的当天日期
func today(est *domain.Establishment) availability.Date {
	loc, err := time.LoadLocation(est.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return availability.DateOf(time.Now(), loc)
}

// dateParam 解析查询参数中的 date，缺省时为餐厅所在时区的当天
func dateParam(r *http.Request, est *domain.Establishment) (availability.Date, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return today(est), nil
	}
	return availability.ParseDate(s)
}

// resolve 读取模板和例外的当前快照并计算某天的可预订时间点
func (h *Handler) resolve(est *domain.Establishment, date availability.Date) ([]availability.ServiceGroup, error) {
	templates, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		return nil, err
	}
	exceptions, err := h.repository.GetExceptionsForDate(est.ID, date.String())
	if err != nil {
		return nil, err
	}

	skipped := availability.Skipped(exceptions)
	for _, e := range skipped {
		slog.Warn("例外缺少必要字段或类型未知，已忽略", "establishment", est.ID, "exception", e.ID, "type", e.ExceptionType)
	}

	groups, err := availability.Resolve(templates, exceptions, date)
	if err != nil {
		return nil, err
	}

	metrics.ObserveResolution(groups, len(skipped))
	return groups, nil
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

	date, err := dateParam(r, est)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	groups, err := h.resolve(est, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可预订时段成功", groups)
}
