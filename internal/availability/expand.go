package availability

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

const (
	DefaultServiceName = "Service"
	DefaultMaxCapacity = 50
)

var ErrInvalidTemplate = errors.New("时段模板无效")

type TimePoint struct {
	Time             string    `json:"time"`
	IsAvailable      bool      `json:"isAvailable"`
	MaxCapacity      int32     `json:"maxCapacity"`
	SourceTemplateID uuid.UUID `json:"sourceTemplateID"`
}

// slot 是展开过程中的中间结果，记住了时间点来自哪个模板以及它的下标
type slot struct {
	point    TimePoint
	template *domain.SlotTemplate
	index    int
}

// Expand 把 date 当天适用的模板展开为 15 分钟一个的时间点，初始均为可预订。
// 模板按 DisplayOrder 排序（相同时保持输入顺序），同一模板内按时间先后输出。
func Expand(templates []domain.SlotTemplate, date Date) ([]TimePoint, error) {
	slots, err := expand(templates, date)
	if err != nil {
		return nil, err
	}

	points := make([]TimePoint, len(slots))
	for i := range slots {
		points[i] = slots[i].point
	}
	return points, nil
}

func expand(templates []domain.SlotTemplate, date Date) ([]slot, error) {
	weekday := date.Weekday()

	selected := make([]*domain.SlotTemplate, 0, len(templates))
	for i := range templates {
		if int(templates[i].DayOfWeek) == weekday {
			selected = append(selected, &templates[i])
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].DisplayOrder < selected[j].DisplayOrder
	})

	var slots []slot
	for _, tmpl := range selected {
		start, end, err := templateRange(tmpl)
		if err != nil {
			return nil, err
		}

		capacity := tmpl.MaxCapacity
		if capacity <= 0 {
			capacity = DefaultMaxCapacity
		}

		// 左闭右开，等于结束时间的点不输出
		for index := start; index < end; index++ {
			slots = append(slots, slot{
				point: TimePoint{
					Time:             SlotTime(index),
					IsAvailable:      true,
					MaxCapacity:      capacity,
					SourceTemplateID: tmpl.ID,
				},
				template: tmpl,
				index:    index,
			})
		}
	}

	return slots, nil
}

func templateRange(tmpl *domain.SlotTemplate) (int, int, error) {
	start, err := SlotIndex(tmpl.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: 模板 %s 的开始时间: %w", ErrInvalidTemplate, tmpl.ID, err)
	}
	end, err := SlotIndex(tmpl.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: 模板 %s 的结束时间: %w", ErrInvalidTemplate, tmpl.ID, err)
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: 模板 %s 的结束时间必须晚于开始时间", ErrInvalidTemplate, tmpl.ID)
	}
	return start, end, nil
}

// ServiceName 返回模板展示用的服务名称，为空时使用 DefaultServiceName
func ServiceName(tmpl *domain.SlotTemplate) string {
	name := strings.TrimSpace(tmpl.ServiceName)
	if name == "" {
		return DefaultServiceName
	}
	return name
}
