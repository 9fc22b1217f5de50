package domain

type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking_created"
	BookingEventCancelled BookingEventType = "booking_cancelled"
)

// BookingEvent 会被序列化后发送到消息队列，由下游服务自行消费
type BookingEvent struct {
	Type    BookingEventType `json:"type"`
	Booking *Booking         `json:"booking"`
}
