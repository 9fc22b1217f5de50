package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "预订"

var bookingColumns = []string{"日期", "时间", "时段", "人数", "姓名", "邮箱", "电话", "备注", "状态"}

// buildBookingsWorkbook 生成某天的预订表格，时段名称取自 serviceNames
func buildBookingsWorkbook(bookings []*domain.Booking, serviceNames map[uuid.UUID]string) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", bookingsSheet)

	header := make([]any, 0, len(bookingColumns))
	for _, col := range bookingColumns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
		_ = f.SetCellStyle(bookingsSheet, "A1", endCell, style)
	}

	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			b.Date,
			b.Time,
			serviceNames[b.SlotTemplateID],
			b.PartySize,
			b.CustomerName,
			b.CustomerEmail,
			b.CustomerPhone,
			b.Notes,
			string(b.Status),
		}
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// serviceNamesByTemplate 使用与可预订时段相同的服务名称
func serviceNamesByTemplate(templates []domain.SlotTemplate) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(templates))
	for i := range templates {
		names[templates[i].ID] = availability.ServiceName(&templates[i])
	}
	return names
}

func (h *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
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
	templates, err := h.repository.GetSlotTemplatesByEstablishment(est.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	f, err := buildBookingsWorkbook(bookings, serviceNamesByTemplate(templates))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, est.Slug, date))
	if err := f.Write(w); err != nil {
		h.logInternalServerError(r, err)
	}
}
