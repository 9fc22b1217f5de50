package availability

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("日期格式错误，应为 YYYY-MM-DD")

// Date 是不带时区的日历日期。
//
// 星期的计算只依赖年月日本身，不会经过任何带时区的时间戳，
// 因此不会出现午夜前后因为 UTC 换算而错位一天的问题。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate 只接受规范的 YYYY-MM-DD 格式，并会校验日期本身是否存在
func ParseDate(s string) (Date, error) {
	if len(s) != len(dateLayout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf 返回时刻 t 在 loc 时区下的日历日期，loc 为 nil 时使用 t 自身的时区
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Weekday 返回 0-6，0 表示周日
func (d Date) Weekday() int {
	// 固定在 UTC 正午计算，只用来做历法换算
	return int(d.noon().Weekday())
}

func (d Date) AddDays(n int) Date {
	t := d.noon().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Compare 在 d 早于、等于、晚于 other 时分别返回 -1、0、1
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
