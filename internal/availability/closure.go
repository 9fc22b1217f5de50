package availability

import (
	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

// closure 是例外记录经过结构校验后的形态，每种类型只携带自己需要的字段
type closure interface {
	// closes 判断在 date 这一天，模板 tmpl 中下标为 index 的时间点是否被关闭。
	// tmpl 为 nil 或 index < 0 表示调用方只在日期层面询问。
	closes(date Date, tmpl *domain.SlotTemplate, index int) bool
}

// 整段日期关闭，首尾都包含
type periodClosure struct {
	start Date
	end   Date
}

func (c periodClosure) closes(date Date, _ *domain.SlotTemplate, _ int) bool {
	return c.start.Compare(date) <= 0 && date.Compare(c.end) <= 0
}

// 整天关闭
type dayClosure struct {
	date Date
}

func (c dayClosure) closes(date Date, _ *domain.SlotTemplate, _ int) bool {
	return c.date == date
}

// 关闭某一天的某个服务（模板）的所有时间点
type serviceClosure struct {
	date       Date
	templateID uuid.UUID
}

func (c serviceClosure) closes(date Date, tmpl *domain.SlotTemplate, _ int) bool {
	return tmpl != nil && c.date == date && tmpl.ID == c.templateID
}

// 只关闭某一天某个模板中的部分时间点
type slotsClosure struct {
	date       Date
	templateID uuid.UUID
	slots      map[int]struct{}
}

func (c slotsClosure) closes(date Date, tmpl *domain.SlotTemplate, index int) bool {
	if tmpl == nil || index < 0 {
		return false
	}
	if c.date != date || tmpl.ID != c.templateID {
		return false
	}
	_, closed := c.slots[index]
	return closed
}

// compile 校验例外记录是否具备其类型所要求的字段。
// 缺字段、日期无法解析或者类型未知时返回 false，该例外不参与计算（即不会关闭任何时间点）。
func compile(e *domain.Exception) (closure, bool) {
	switch e.ExceptionType {
	case domain.ExceptionTypePeriod:
		start, ok := parseOptionalDate(e.StartDate)
		if !ok {
			return nil, false
		}
		end, ok := parseOptionalDate(e.EndDate)
		if !ok {
			return nil, false
		}
		return periodClosure{start: start, end: end}, true

	case domain.ExceptionTypeSingleDay:
		date, ok := parseOptionalDate(e.Date)
		if !ok {
			return nil, false
		}
		return dayClosure{date: date}, true

	case domain.ExceptionTypeService:
		date, ok := parseOptionalDate(e.Date)
		if !ok || !hasTemplate(e) {
			return nil, false
		}
		return serviceClosure{date: date, templateID: *e.SlotTemplateID}, true

	case domain.ExceptionTypeTimeSlots:
		date, ok := parseOptionalDate(e.Date)
		if !ok || !hasTemplate(e) || len(e.ClosedSlots) == 0 {
			return nil, false
		}
		slots := make(map[int]struct{}, len(e.ClosedSlots))
		for _, s := range e.ClosedSlots {
			slots[int(s)] = struct{}{}
		}
		return slotsClosure{date: date, templateID: *e.SlotTemplateID, slots: slots}, true

	default:
		return nil, false
	}
}

func parseOptionalDate(s *string) (Date, bool) {
	if s == nil {
		return Date{}, false
	}
	d, err := ParseDate(*s)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

func hasTemplate(e *domain.Exception) bool {
	return e.SlotTemplateID != nil && *e.SlotTemplateID != uuid.Nil
}

func activeClosures(exceptions []domain.Exception) []closure {
	closures := make([]closure, 0, len(exceptions))
	for i := range exceptions {
		if exceptions[i].Status != domain.ExceptionStatusActive {
			continue
		}
		if c, ok := compile(&exceptions[i]); ok {
			closures = append(closures, c)
		}
	}
	return closures
}
