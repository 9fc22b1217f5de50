package utils

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func IsValidSlug(slug string) bool {
	return len(slug) <= 63 && slugPattern.MatchString(slug)
}

func ValidateTimezone(tz string) error {
	if tz == "" {
		return errors.New("时区不能为空")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("无效的时区 %s", tz)
	}
	return nil
}

// ValidateSlotTemplate 检查模板本身的时间是否合法，以及是否与同一天的其他模板冲突
func ValidateSlotTemplate(st *domain.SlotTemplate, others []domain.SlotTemplate) error {
	if st.DayOfWeek < 0 || st.DayOfWeek > 6 {
		return errors.New("星期必须在 0 到 6 之间")
	}

	start, err := availability.SlotIndex(st.StartTime)
	if err != nil || start == availability.SlotsPerDay {
		return errors.New("开始时间格式错误，应为 HH:MM 且分钟为 15 的倍数")
	}
	end, err := availability.SlotIndex(st.EndTime)
	if err != nil {
		return errors.New("结束时间格式错误，应为 HH:MM 且分钟为 15 的倍数")
	}
	if end <= start {
		return errors.New("结束时间必须晚于开始时间")
	}

	// 检查与同一天的其他模板之间的时间是否冲突
	for _, other := range others {
		if other.ID == st.ID || other.DayOfWeek != st.DayOfWeek {
			continue
		}
		otherStart, err := availability.SlotIndex(other.StartTime)
		if err != nil {
			continue
		}
		otherEnd, err := availability.SlotIndex(other.EndTime)
		if err != nil {
			continue
		}
		if start < otherEnd && otherStart < end {
			return fmt.Errorf("与时段 %s（%s-%s）的时间冲突", other.ServiceName, other.StartTime, other.EndTime)
		}
	}

	return nil
}

// ValidateException 在写入前检查例外是否具备其类型所要求的字段。
// 计算可预订时段时对不完整的例外是直接忽略的，所以必须在写入时拦住。
func ValidateException(e *domain.Exception, templates []domain.SlotTemplate) error {
	switch e.ExceptionType {
	case domain.ExceptionTypePeriod:
		if e.StartDate == nil || e.EndDate == nil {
			return errors.New("按时间段关闭时必须提供开始日期和结束日期")
		}
		start, err := availability.ParseDate(*e.StartDate)
		if err != nil {
			return errors.New("开始日期格式错误，应为 YYYY-MM-DD")
		}
		end, err := availability.ParseDate(*e.EndDate)
		if err != nil {
			return errors.New("结束日期格式错误，应为 YYYY-MM-DD")
		}
		if start.Compare(end) > 0 {
			return errors.New("开始日期不能晚于结束日期")
		}
		return nil

	case domain.ExceptionTypeSingleDay:
		if _, err := requireDate(e); err != nil {
			return err
		}
		return nil

	case domain.ExceptionTypeService, domain.ExceptionTypeTimeSlots:
		date, err := requireDate(e)
		if err != nil {
			return err
		}
		if e.SlotTemplateID == nil {
			return errors.New("必须指定时段模板")
		}

		var tmpl *domain.SlotTemplate
		for i := range templates {
			if templates[i].ID == *e.SlotTemplateID {
				tmpl = &templates[i]
				break
			}
		}
		if tmpl == nil {
			return errors.New("时段模板不存在")
		}
		if int(tmpl.DayOfWeek) != date.Weekday() {
			return errors.New("该日期不是时段模板适用的星期")
		}

		if e.ExceptionType == domain.ExceptionTypeService {
			return nil
		}
		return validateClosedSlots(e.ClosedSlots, tmpl)

	default:
		return fmt.Errorf("未知的例外类型 %s", e.ExceptionType)
	}
}

func requireDate(e *domain.Exception) (availability.Date, error) {
	if e.Date == nil {
		return availability.Date{}, errors.New("必须提供日期")
	}
	date, err := availability.ParseDate(*e.Date)
	if err != nil {
		return availability.Date{}, errors.New("日期格式错误，应为 YYYY-MM-DD")
	}
	return date, nil
}

func validateClosedSlots(slots []int32, tmpl *domain.SlotTemplate) error {
	if len(slots) == 0 {
		return errors.New("必须指定要关闭的时间点")
	}

	start, err := availability.SlotIndex(tmpl.StartTime)
	if err != nil {
		return err
	}
	end, err := availability.SlotIndex(tmpl.EndTime)
	if err != nil {
		return err
	}

	for _, s := range slots {
		if int(s) < start || int(s) >= end {
			return fmt.Errorf("时间点 %d 不在时段模板 %s-%s 之内", s, tmpl.StartTime, tmpl.EndTime)
		}
	}
	return nil
}

// NormalizeException 清除与例外类型无关的字段，避免存入含义模糊的记录
func NormalizeException(e *domain.Exception) {
	switch e.ExceptionType {
	case domain.ExceptionTypePeriod:
		e.Date = nil
		e.SlotTemplateID = nil
		e.ClosedSlots = nil
	case domain.ExceptionTypeSingleDay:
		e.StartDate = nil
		e.EndDate = nil
		e.SlotTemplateID = nil
		e.ClosedSlots = nil
	case domain.ExceptionTypeService:
		e.StartDate = nil
		e.EndDate = nil
		e.ClosedSlots = nil
	case domain.ExceptionTypeTimeSlots:
		e.StartDate = nil
		e.EndDate = nil
	}
}
