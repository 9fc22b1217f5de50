package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/metrics"
)

// bookingRejection 表示预订请求本身合法，但按当前的可预订情况不能接受
type bookingRejection struct {
	outcome string // 对应 metrics 中的预订结果，为空则不计数
	msg     string
}

func (e *bookingRejection) Error() string {
	return e.msg
}

// parseBookingTarget 解析预订的日期和时间，时间会被规范成 HH:MM
func parseBookingTarget(date string, clock string, today availability.Date) (availability.Date, string, error) {
	d, err := availability.ParseDate(date)
	if err != nil {
		return availability.Date{}, "", err
	}
	if d.Compare(today) < 0 {
		return availability.Date{}, "", &bookingRejection{msg: "不能预订过去的日期"}
	}

	index, err := availability.SlotIndex(clock)
	if err != nil || index == availability.SlotsPerDay {
		return availability.Date{}, "", &bookingRejection{msg: "时间格式错误，应为 HH:MM 且分钟为 15 的倍数"}
	}

	return d, availability.SlotTime(index), nil
}

// checkBookable 根据计算出的可预订时间点和已预订人数判断能否再接受 party 人
func checkBookable(groups []availability.ServiceGroup, templateID uuid.UUID, clock string, booked int32, party int32) (availability.TimePoint, error) {
	point, ok := availability.FindPoint(groups, templateID, clock)
	if !ok {
		return availability.TimePoint{}, &bookingRejection{msg: "该时间点不存在"}
	}
	if !point.IsAvailable {
		return availability.TimePoint{}, &bookingRejection{outcome: metrics.BookingClosed, msg: "该时间点暂停预订"}
	}
	if booked+party > point.MaxCapacity {
		return availability.TimePoint{}, &bookingRejection{
			outcome: metrics.BookingFull,
			msg:     fmt.Sprintf("该时间点剩余座位不足，仅剩 %d 个", max(point.MaxCapacity-booked, 0)),
		}
	}
	return point, nil
}

func (h *Handler) rejectBooking(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *bookingRejection
	if !errors.As(err, &rejection) {
		h.badRequest(w, r, err)
		return
	}

	if rejection.outcome != "" {
		metrics.IncBooking(rejection.outcome)
	}
	h.errorResponse(w, r, rejection.msg)
}
