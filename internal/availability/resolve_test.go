package availability

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = Date{2024, time.January, 1}

func strPtr(s string) *string { return &s }

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

func dinnerTemplate() domain.SlotTemplate {
	return domain.SlotTemplate{
		ID:          uuid.New(),
		DayOfWeek:   1,
		StartTime:   "18:00",
		EndTime:     "20:00",
		ServiceName: "Dinner",
		MaxCapacity: 30,
	}
}

func singleDay(date string) domain.Exception {
	return domain.Exception{
		ID:            uuid.New(),
		ExceptionType: domain.ExceptionTypeSingleDay,
		Date:          strPtr(date),
		Status:        domain.ExceptionStatusActive,
	}
}

func availableCount(groups []ServiceGroup) int {
	n := 0
	for _, g := range groups {
		for _, p := range g.TimePoints {
			if p.IsAvailable {
				n++
			}
		}
	}
	return n
}

func TestResolveScenarioA(t *testing.T) {
	tmpl := dinnerTemplate()

	groups, err := Resolve([]domain.SlotTemplate{tmpl}, nil, monday)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Dinner", groups[0].ServiceName)

	want := []string{"18:00", "18:15", "18:30", "18:45", "19:00", "19:15", "19:30", "19:45"}
	require.Len(t, groups[0].TimePoints, len(want))
	for i, p := range groups[0].TimePoints {
		assert.Equal(t, want[i], p.Time)
		assert.True(t, p.IsAvailable)
		assert.Equal(t, int32(30), p.MaxCapacity)
		assert.Equal(t, tmpl.ID, p.SourceTemplateID)
	}
}

func TestResolveScenarioB(t *testing.T) {
	groups, err := Resolve(
		[]domain.SlotTemplate{dinnerTemplate()},
		[]domain.Exception{singleDay("2024-01-01")},
		monday,
	)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].TimePoints, 8)
	assert.Equal(t, 0, availableCount(groups))
}

func TestResolveScenarioC(t *testing.T) {
	tmpl := dinnerTemplate()
	exception := domain.Exception{
		ExceptionType:  domain.ExceptionTypeTimeSlots,
		Date:           strPtr("2024-01-01"),
		SlotTemplateID: idPtr(tmpl.ID),
		ClosedSlots:    []int32{72, 73},
		Status:         domain.ExceptionStatusActive,
	}

	groups, err := Resolve([]domain.SlotTemplate{tmpl}, []domain.Exception{exception}, monday)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	for _, p := range groups[0].TimePoints {
		closed := p.Time == "18:00" || p.Time == "18:15"
		assert.Equal(t, !closed, p.IsAvailable, p.Time)
	}
	assert.Equal(t, 6, availableCount(groups))
}

func TestResolveScenarioD(t *testing.T) {
	exception := domain.Exception{
		ExceptionType: domain.ExceptionTypePeriod,
		StartDate:     strPtr(monday.AddDays(-7).String()),
		EndDate:       strPtr(monday.AddDays(7).String()),
		Status:        domain.ExceptionStatusActive,
	}

	groups, err := Resolve([]domain.SlotTemplate{dinnerTemplate()}, []domain.Exception{exception}, monday)
	require.NoError(t, err)
	require.Len(t, groups[0].TimePoints, 8)
	assert.Equal(t, 0, availableCount(groups))
}

func TestResolveScenarioE(t *testing.T) {
	tmpl := dinnerTemplate()
	exception := domain.Exception{
		ExceptionType:  domain.ExceptionTypeTimeSlots,
		Date:           strPtr("2024-01-01"),
		SlotTemplateID: idPtr(tmpl.ID),
		Status:         domain.ExceptionStatusActive,
	}

	groups, err := Resolve([]domain.SlotTemplate{tmpl}, []domain.Exception{exception}, monday)
	require.NoError(t, err)
	assert.Equal(t, 8, availableCount(groups))
	assert.Len(t, Skipped([]domain.Exception{exception}), 1)
}

func TestResolveScenarioF(t *testing.T) {
	dinner := dinnerTemplate()
	dinner.DisplayOrder = 2
	lunch := domain.SlotTemplate{
		ID:           uuid.New(),
		DayOfWeek:    1,
		StartTime:    "12:00",
		EndTime:      "14:00",
		ServiceName:  "Lunch",
		DisplayOrder: 1,
	}

	// 输入顺序与 DisplayOrder 相反
	groups, err := Resolve([]domain.SlotTemplate{dinner, lunch}, nil, monday)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Lunch", groups[0].ServiceName)
	assert.Equal(t, "Dinner", groups[1].ServiceName)
	for _, p := range groups[0].TimePoints {
		assert.Equal(t, lunch.ID, p.SourceTemplateID)
		assert.Equal(t, int32(DefaultMaxCapacity), p.MaxCapacity)
	}
	for _, p := range groups[1].TimePoints {
		assert.Equal(t, dinner.ID, p.SourceTemplateID)
	}
	assert.Len(t, groups[0].TimePoints, 8)
	assert.Len(t, groups[1].TimePoints, 8)
}

func TestResolveEmptyDay(t *testing.T) {
	// 模板是周一的，查询周二
	groups, err := Resolve([]domain.SlotTemplate{dinnerTemplate()}, nil, monday.AddDays(1))
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestResolveServiceClosureOnlyClosesItsTemplate(t *testing.T) {
	dinner := dinnerTemplate()
	lunch := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 1, StartTime: "12:00", EndTime: "13:00", ServiceName: "Lunch"}
	exception := domain.Exception{
		ExceptionType:  domain.ExceptionTypeService,
		Date:           strPtr("2024-01-01"),
		SlotTemplateID: idPtr(lunch.ID),
		Status:         domain.ExceptionStatusActive,
	}

	groups, err := Resolve([]domain.SlotTemplate{lunch, dinner}, []domain.Exception{exception}, monday)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	for _, p := range groups[0].TimePoints {
		assert.False(t, p.IsAvailable)
	}
	for _, p := range groups[1].TimePoints {
		assert.True(t, p.IsAvailable)
	}

	// 其他日期的同一例外不生效
	groups, err = Resolve([]domain.SlotTemplate{lunch, dinner}, []domain.Exception{exception}, monday.AddDays(7))
	require.NoError(t, err)
	assert.Equal(t, 12, availableCount(groups))
}

func TestResolveGroupsTemplatesWithSameServiceName(t *testing.T) {
	early := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 1, StartTime: "18:00", EndTime: "18:30", ServiceName: "Dinner", DisplayOrder: 1}
	late := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 1, StartTime: "21:00", EndTime: "21:30", ServiceName: "Dinner", DisplayOrder: 3}
	unnamed := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 1, StartTime: "15:00", EndTime: "15:15", ServiceName: "  ", DisplayOrder: 2}

	groups, err := Resolve([]domain.SlotTemplate{late, unnamed, early}, nil, monday)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Dinner", groups[0].ServiceName)
	times := []string{}
	for _, p := range groups[0].TimePoints {
		times = append(times, p.Time)
	}
	assert.Equal(t, []string{"18:00", "18:15", "21:00", "21:15"}, times)

	assert.Equal(t, DefaultServiceName, groups[1].ServiceName)
	assert.Len(t, groups[1].TimePoints, 1)
}

func TestResolveIgnoresMalformedAndUnknownExceptions(t *testing.T) {
	tmpl := dinnerTemplate()
	exceptions := []domain.Exception{
		{ExceptionType: "holiday", Date: strPtr("2024-01-01"), Status: domain.ExceptionStatusActive},
		{ExceptionType: domain.ExceptionTypeSingleDay, Status: domain.ExceptionStatusActive},
		{ExceptionType: domain.ExceptionTypeSingleDay, Date: strPtr("01/01/2024"), Status: domain.ExceptionStatusActive},
		{ExceptionType: domain.ExceptionTypePeriod, StartDate: strPtr("2023-12-01"), Status: domain.ExceptionStatusActive},
		{ExceptionType: domain.ExceptionTypeService, Date: strPtr("2024-01-01"), Status: domain.ExceptionStatusActive},
		{ExceptionType: domain.ExceptionTypeService, Date: strPtr("2024-01-01"), SlotTemplateID: idPtr(uuid.Nil), Status: domain.ExceptionStatusActive},
		{ExceptionType: domain.ExceptionTypeTimeSlots, Date: strPtr("2024-01-01"), ClosedSlots: []int32{72}, Status: domain.ExceptionStatusActive},
	}

	groups, err := Resolve([]domain.SlotTemplate{tmpl}, exceptions, monday)
	require.NoError(t, err)
	assert.Equal(t, 8, availableCount(groups))
	assert.Len(t, Skipped(exceptions), len(exceptions))
}

func TestResolveInvalidTemplate(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"unaligned minutes", "18:10", "20:00"},
		{"bad format", "6pm", "20:00"},
		{"end before start", "20:00", "18:00"},
		{"empty range", "18:00", "18:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := dinnerTemplate()
			tmpl.StartTime = tt.start
			tmpl.EndTime = tt.end

			_, err := Resolve([]domain.SlotTemplate{tmpl}, nil, monday)
			require.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}
}

func TestResolveInvalidTemplateOnOtherDayIsNotChecked(t *testing.T) {
	broken := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 2, StartTime: "bad", EndTime: "bad"}

	groups, err := Resolve([]domain.SlotTemplate{dinnerTemplate(), broken}, nil, monday)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	b := dinnerTemplate()
	b.DisplayOrder = 0
	a := dinnerTemplate()
	a.DisplayOrder = 5
	templates := []domain.SlotTemplate{a, b}
	exceptions := []domain.Exception{singleDay("2024-01-01")}

	_, err := Resolve(templates, exceptions, monday)
	require.NoError(t, err)

	assert.Equal(t, a, templates[0])
	assert.Equal(t, b, templates[1])
	assert.Equal(t, "2024-01-01", *exceptions[0].Date)
}

func TestExpandHalfOpenAndWeekdayFilter(t *testing.T) {
	templates := []domain.SlotTemplate{}
	for day := int32(0); day < 7; day++ {
		templates = append(templates, domain.SlotTemplate{
			ID:        uuid.New(),
			DayOfWeek: day,
			StartTime: "10:00",
			EndTime:   "11:00",
		})
	}
	templates = append(templates, domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 6, StartTime: "23:00", EndTime: "24:00"})

	for offset := 0; offset < 7; offset++ {
		date := monday.AddDays(offset)
		points, err := Expand(templates, date)
		require.NoError(t, err)

		for _, p := range points {
			var source domain.SlotTemplate
			for _, tmpl := range templates {
				if tmpl.ID == p.SourceTemplateID {
					source = tmpl
				}
			}
			assert.Equal(t, date.Weekday(), int(source.DayOfWeek))
			assert.NotEqual(t, source.EndTime, p.Time)
		}
	}

	// 周六 2024-01-06 有两个模板，最后一个时间点是 23:45
	points, err := Expand(templates, monday.AddDays(5))
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, "23:45", points[len(points)-1].Time)
}

func TestExpandFullDay(t *testing.T) {
	tmpl := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 1, StartTime: "00:00", EndTime: "24:00"}

	points, err := Expand([]domain.SlotTemplate{tmpl}, monday)
	require.NoError(t, err)
	assert.Len(t, points, SlotsPerDay)
}

func TestMatches(t *testing.T) {
	tmpl := dinnerTemplate()
	other := dinnerTemplate()
	point := &TimePoint{Time: "18:15", SourceTemplateID: tmpl.ID}
	otherPoint := &TimePoint{Time: "19:00", SourceTemplateID: tmpl.ID}

	period := domain.Exception{ExceptionType: domain.ExceptionTypePeriod, StartDate: strPtr("2023-12-31"), EndDate: strPtr("2024-01-01")}
	service := domain.Exception{ExceptionType: domain.ExceptionTypeService, Date: strPtr("2024-01-01"), SlotTemplateID: idPtr(tmpl.ID)}
	slots := domain.Exception{ExceptionType: domain.ExceptionTypeTimeSlots, Date: strPtr("2024-01-01"), SlotTemplateID: idPtr(tmpl.ID), ClosedSlots: []int32{73}}

	// period 首尾都包含
	assert.True(t, Matches(period, monday, nil, nil))
	assert.True(t, Matches(period, monday.AddDays(-1), nil, nil))
	assert.False(t, Matches(period, monday.AddDays(1), nil, nil))
	assert.False(t, Matches(period, monday.AddDays(-2), nil, nil))

	assert.True(t, Matches(singleDay("2024-01-01"), monday, nil, nil))
	assert.False(t, Matches(singleDay("2024-01-02"), monday, nil, nil))

	assert.True(t, Matches(service, monday, &tmpl, nil))
	assert.False(t, Matches(service, monday, &other, nil))
	assert.False(t, Matches(service, monday, nil, nil))
	assert.False(t, Matches(service, monday.AddDays(7), &tmpl, nil))

	assert.True(t, Matches(slots, monday, &tmpl, point))
	assert.False(t, Matches(slots, monday, &tmpl, otherPoint))
	assert.False(t, Matches(slots, monday, &other, point))
	assert.False(t, Matches(slots, monday, &tmpl, nil))
	assert.False(t, Matches(slots, monday, &tmpl, &TimePoint{Time: "18:10"}))
}

func TestFindPoint(t *testing.T) {
	tmpl := dinnerTemplate()
	groups, err := Resolve([]domain.SlotTemplate{tmpl}, nil, monday)
	require.NoError(t, err)

	p, ok := FindPoint(groups, tmpl.ID, "19:45")
	require.True(t, ok)
	assert.True(t, p.IsAvailable)

	_, ok = FindPoint(groups, tmpl.ID, "20:00")
	assert.False(t, ok)
	_, ok = FindPoint(groups, uuid.New(), "18:00")
	assert.False(t, ok)
}

// randomException 生成随机的例外，其中一部分结构不完整
func randomException(rng *rand.Rand, templates []domain.SlotTemplate) domain.Exception {
	date := monday.AddDays(rng.Intn(5) - 2).String()
	tmplID := templates[rng.Intn(len(templates))].ID

	e := domain.Exception{ID: uuid.New(), Status: domain.ExceptionStatusActive}
	switch rng.Intn(5) {
	case 0:
		e.ExceptionType = domain.ExceptionTypePeriod
		e.StartDate = strPtr(monday.AddDays(-rng.Intn(3)).String())
		e.EndDate = strPtr(monday.AddDays(rng.Intn(3) - 1).String())
	case 1:
		e.ExceptionType = domain.ExceptionTypeSingleDay
		e.Date = strPtr(date)
	case 2:
		e.ExceptionType = domain.ExceptionTypeService
		e.Date = strPtr(date)
		e.SlotTemplateID = idPtr(tmplID)
	case 3:
		e.ExceptionType = domain.ExceptionTypeTimeSlots
		e.Date = strPtr(date)
		e.SlotTemplateID = idPtr(tmplID)
		for i := 0; i < rng.Intn(4); i++ {
			e.ClosedSlots = append(e.ClosedSlots, int32(48+rng.Intn(40)))
		}
	default:
		e.ExceptionType = domain.ExceptionType("unknown")
		e.Date = strPtr(date)
	}
	return e
}

func availabilityByKey(groups []ServiceGroup) map[string]bool {
	result := make(map[string]bool)
	for _, g := range groups {
		for _, p := range g.TimePoints {
			result[p.SourceTemplateID.String()+"@"+p.Time] = p.IsAvailable
		}
	}
	return result
}

func TestResolveClosureIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	lunch := domain.SlotTemplate{ID: uuid.New(), DayOfWeek: 1, StartTime: "12:00", EndTime: "14:30", ServiceName: "Lunch"}
	dinner := dinnerTemplate()
	dinner.EndTime = "22:00"
	templates := []domain.SlotTemplate{lunch, dinner}

	for round := 0; round < 50; round++ {
		var exceptions []domain.Exception
		before, err := Resolve(templates, exceptions, monday)
		require.NoError(t, err)
		prev := availabilityByKey(before)

		for i := 0; i < 6; i++ {
			exceptions = append(exceptions, randomException(rng, templates))
			after, err := Resolve(templates, exceptions, monday)
			require.NoError(t, err)

			next := availabilityByKey(after)
			require.Len(t, next, len(prev))
			for key, wasAvailable := range prev {
				if !wasAvailable {
					require.False(t, next[key], "时间点 %s 被重新打开", key)
				}
			}
			prev = next
		}
	}
}

func TestResolveInactiveExceptionsAreInert(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	templates := []domain.SlotTemplate{dinnerTemplate()}

	for round := 0; round < 50; round++ {
		var exceptions []domain.Exception
		for i := 0; i < 4; i++ {
			exceptions = append(exceptions, randomException(rng, templates))
		}

		groups, err := Resolve(templates, exceptions, monday)
		require.NoError(t, err)
		before := availableCount(groups)

		target := rng.Intn(len(exceptions))
		exceptions[target].Status = domain.ExceptionStatusInactive

		groups, err = Resolve(templates, exceptions, monday)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, availableCount(groups), before)
	}

	// 全部停用时与没有例外的结果一致
	exceptions := []domain.Exception{singleDay("2024-01-01")}
	exceptions[0].Status = domain.ExceptionStatusInactive
	groups, err := Resolve(templates, exceptions, monday)
	require.NoError(t, err)
	assert.Equal(t, 8, availableCount(groups))
}
