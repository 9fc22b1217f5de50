package availability

import (
	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

type ServiceGroup struct {
	ServiceName string      `json:"serviceName"`
	TimePoints  []TimePoint `json:"timePoints"`
}

// Resolve 计算某个门店在 date 当天的可预订时间点，并按服务名称分组。
//
// 只有 active 的例外参与计算。任意一个例外命中即把时间点标记为不可预订，
// 例外之间没有优先级，也不会有例外把已经关闭的时间点重新打开。
// 结构不完整或类型未知的例外会被忽略。当天没有任何模板时返回空列表。
//
// Resolve 不会修改传入的参数，每次调用都返回新分配的结果，可以并发调用。
func Resolve(templates []domain.SlotTemplate, exceptions []domain.Exception, date Date) ([]ServiceGroup, error) {
	slots, err := expand(templates, date)
	if err != nil {
		return nil, err
	}

	closures := activeClosures(exceptions)
	for i := range slots {
		for _, c := range closures {
			if c.closes(date, slots[i].template, slots[i].index) {
				slots[i].point.IsAvailable = false
				break
			}
		}
	}

	return group(slots), nil
}

// Matches 判断单个例外在 date 当天是否关闭给定的模板或时间点。
//
// period 和 single_day 只看日期，template 和 point 可以为 nil；
// service 需要 template；time_slots 需要 template 和 point。
// 不检查 Status，由调用方决定是否只考虑 active 的例外。
func Matches(exception domain.Exception, date Date, template *domain.SlotTemplate, point *TimePoint) bool {
	c, ok := compile(&exception)
	if !ok {
		return false
	}

	index := -1
	if point != nil {
		i, err := SlotIndex(point.Time)
		if err != nil {
			return false
		}
		index = i
	}

	return c.closes(date, template, index)
}

// Skipped 返回那些 active 但因为缺少字段或类型未知而被 Resolve 忽略的例外
func Skipped(exceptions []domain.Exception) []domain.Exception {
	var skipped []domain.Exception
	for i := range exceptions {
		if exceptions[i].Status != domain.ExceptionStatusActive {
			continue
		}
		if _, ok := compile(&exceptions[i]); !ok {
			skipped = append(skipped, exceptions[i])
		}
	}
	return skipped
}

// FindPoint 在分组结果中找到某个模板在 clock 时刻的时间点
func FindPoint(groups []ServiceGroup, templateID uuid.UUID, clock string) (TimePoint, bool) {
	for _, g := range groups {
		for _, p := range g.TimePoints {
			if p.SourceTemplateID == templateID && p.Time == clock {
				return p, true
			}
		}
	}
	return TimePoint{}, false
}

func group(slots []slot) []ServiceGroup {
	groups := []ServiceGroup{}
	positions := make(map[string]int)

	for i := range slots {
		name := ServiceName(slots[i].template)
		pos, exists := positions[name]
		if !exists {
			pos = len(groups)
			positions[name] = pos
			groups = append(groups, ServiceGroup{ServiceName: name})
		}
		groups[pos].TimePoints = append(groups[pos].TimePoints, slots[i].point)
	}

	return groups
}
