package availability

import (
	"errors"
	"fmt"
)

const (
	SlotMinutes  = 15
	SlotsPerHour = 60 / SlotMinutes
	SlotsPerDay  = 24 * SlotsPerHour
)

var ErrInvalidTime = errors.New("时间格式错误，应为 HH:MM 且分钟为 15 的倍数")

// SlotIndex 把 HH:MM 换算成一天中的第几个 15 分钟，即 hours*4 + minutes/15。
// 分钟不是 15 的倍数时直接报错，不做取整。"24:00" 表示一天的结束，对应 96。
func SlotIndex(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}

	hours, ok := twoDigits(clock[0:2])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	minutes, ok := twoDigits(clock[3:5])
	if !ok || minutes >= 60 || minutes%SlotMinutes != 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}

	if hours == 24 && minutes == 0 {
		return SlotsPerDay, nil
	}
	if hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}

	return hours*SlotsPerHour + minutes/SlotMinutes, nil
}

// SlotTime 是 SlotIndex 的逆运算
func SlotTime(index int) string {
	return fmt.Sprintf("%02d:%02d", index/SlotsPerHour, (index%SlotsPerHour)*SlotMinutes)
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
