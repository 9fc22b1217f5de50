package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
)

var restaurantPrefixes = []string{
	"老", "小", "大", "新", "金", "福", "鸿", "聚", "好", "鲜",
}
var restaurantWords = []string{
	"张", "李", "湘", "川", "粤", "满", "香", "味", "家", "田",
	"春", "风", "月", "海", "山", "城", "园", "宴", "记", "坊",
}
var restaurantSuffixes = []string{
	"饭店", "酒家", "餐厅", "小馆", "食府", "面馆",
}

func GenerateRandomRestaurantName() string {
	name := restaurantPrefixes[rand.Intn(len(restaurantPrefixes))]
	wordsLength := rand.Intn(2) + 1

	for i := 0; i < wordsLength; i++ {
		name += restaurantWords[rand.Intn(len(restaurantWords))]
	}
	return name + restaurantSuffixes[rand.Intn(len(restaurantSuffixes))]
}

var digits = "0123456789"

// GenerateSlugFromChineseName 用拼音生成门店的 slug，末尾加上随机数字避免重复
func GenerateSlugFromChineseName(chineseName string) string {
	parts := pinyin.LazyConvert(chineseName, nil)
	slug := strings.Join(parts, "-")
	if slug == "" {
		slug = "restaurant"
	}

	slug += "-"
	digitsLength := rand.Intn(3) + 2
	for i := 0; i < digitsLength; i++ {
		slug += string(digits[rand.Intn(len(digits))])
	}

	return slug
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomEstablishment(organizationID uuid.UUID, timezone string) *domain.Establishment {
	name := GenerateRandomRestaurantName()
	return &domain.Establishment{
		OrganizationID: organizationID,
		Name:           name,
		Slug:           GenerateSlugFromChineseName(name),
		Timezone:       timezone,
	}
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机的营业日子集
func GenerateRandomOpeningDays() []int32 {
	days := []int32{0, 1, 2, 3, 4, 5, 6}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1

	return days[:n]
}

// GenerateRandomSlotTemplates 为随机的营业日生成午市和晚市两个时段
func GenerateRandomSlotTemplates(establishmentID uuid.UUID) []*domain.SlotTemplate {
	var templates []*domain.SlotTemplate

	for _, day := range GenerateRandomOpeningDays() {
		// 午市 11:00~12:30 开始，持续 1.5~3 小时
		lunchStart := 44 + rand.Intn(7)
		lunchEnd := lunchStart + 6 + rand.Intn(7)
		// 晚市 17:00~19:00 开始，持续 2~4 小时
		dinnerStart := 68 + rand.Intn(9)
		dinnerEnd := dinnerStart + 8 + rand.Intn(9)

		templates = append(templates,
			&domain.SlotTemplate{
				EstablishmentID: establishmentID,
				DayOfWeek:       day,
				StartTime:       availability.SlotTime(lunchStart),
				EndTime:         availability.SlotTime(lunchEnd),
				ServiceName:     "午市",
				MaxCapacity:     int32(rand.Intn(41) + 10),
				DisplayOrder:    1,
			},
			&domain.SlotTemplate{
				EstablishmentID: establishmentID,
				DayOfWeek:       day,
				StartTime:       availability.SlotTime(dinnerStart),
				EndTime:         availability.SlotTime(dinnerEnd),
				ServiceName:     "晚市",
				MaxCapacity:     int32(rand.Intn(41) + 10),
				DisplayOrder:    2,
			},
		)
	}

	return templates
}

var exceptionReasons = []string{"店内装修", "员工培训", "包场", "节假日休息", "设备检修"}

// GenerateRandomException 在 from 之后 30 天内随机生成一个例外
func GenerateRandomException(e *domain.Establishment, templates []domain.SlotTemplate, from availability.Date) *domain.Exception {
	date := from.AddDays(rand.Intn(30))
	exception := &domain.Exception{
		EstablishmentID: e.ID,
		OrganizationID:  e.OrganizationID,
		Reason:          exceptionReasons[rand.Intn(len(exceptionReasons))],
		Status:          domain.ExceptionStatusActive,
	}

	// 找到当天适用的模板，没有的话只能生成整天或整段的例外
	var candidates []domain.SlotTemplate
	for _, tmpl := range templates {
		if int(tmpl.DayOfWeek) == date.Weekday() {
			candidates = append(candidates, tmpl)
		}
	}

	kind := rand.Intn(4)
	if len(candidates) == 0 {
		kind = rand.Intn(2)
	}

	switch kind {
	case 0:
		exception.ExceptionType = domain.ExceptionTypePeriod
		start := date.String()
		end := date.AddDays(rand.Intn(7)).String()
		exception.StartDate = &start
		exception.EndDate = &end
	case 1:
		exception.ExceptionType = domain.ExceptionTypeSingleDay
		d := date.String()
		exception.Date = &d
	default:
		tmpl := candidates[rand.Intn(len(candidates))]
		d := date.String()
		exception.Date = &d
		exception.SlotTemplateID = &tmpl.ID

		if kind == 2 {
			exception.ExceptionType = domain.ExceptionTypeService
			break
		}

		exception.ExceptionType = domain.ExceptionTypeTimeSlots
		start, _ := availability.SlotIndex(tmpl.StartTime)
		end, _ := availability.SlotIndex(tmpl.EndTime)
		for index := start; index < end; index++ {
			if rand.Intn(3) == 0 {
				exception.ClosedSlots = append(exception.ClosedSlots, int32(index))
			}
		}
		if len(exception.ClosedSlots) == 0 {
			exception.ClosedSlots = []int32{int32(start)}
		}
	}

	return exception
}

func FormatExceptionSummary(e *domain.Exception) string {
	switch e.ExceptionType {
	case domain.ExceptionTypePeriod:
		return fmt.Sprintf("%s %s~%s", e.ExceptionType, deref(e.StartDate), deref(e.EndDate))
	default:
		return fmt.Sprintf("%s %s", e.ExceptionType, deref(e.Date))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
