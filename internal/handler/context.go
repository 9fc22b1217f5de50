package handler

type ContextKey string

var (
	EstablishmentCtx ContextKey = "establishment"
	SlotTemplateCtx  ContextKey = "slotTemplate"
	ExceptionCtx     ContextKey = "exception"
	BookingCtx       ContextKey = "booking"
)
