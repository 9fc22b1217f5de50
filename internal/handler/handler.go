package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/restohub/backend/internal/config"
	"github.com/restohub/backend/internal/repository"
	"github.com/restohub/backend/internal/utils"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	eventChannel *amqp.Channel
	redisClient  *redis.Client
	limiter      *ipRateLimiter

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, eventCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 校验错误中使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return utils.IsValidSlug(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	if err := validate.RegisterTranslation("slug", trans, func(tr ut.Translator) error {
		return tr.Add("slug", "{0}只能包含小写字母、数字和连字符", true)
	}, func(tr ut.Translator, fe validator.FieldError) string {
		msg, _ := tr.T("slug", fe.Field())
		return msg
	}); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		eventChannel: eventCh,
		redisClient:  rdb,
		limiter:      newIPRateLimiter(cfg.Booking.RateLimit, cfg.Booking.RateBurst),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Route("/establishments", func(r chi.Router) {
		r.Post("/", h.CreateEstablishment)
		r.Get("/", h.GetAllEstablishments)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.establishment)
			r.Get("/", h.GetEstablishment)
			r.Patch("/", h.UpdateEstablishment)
			r.Delete("/", h.DeleteEstablishment)

			r.Get("/availability", h.GetAvailability)

			r.Route("/slot-templates", func(r chi.Router) {
				r.Post("/", h.CreateSlotTemplate)
				r.Get("/", h.GetAllSlotTemplates)
				r.Route("/{templateID}", func(r chi.Router) {
					r.Use(h.slotTemplate)
					r.Get("/", h.GetSlotTemplate)
					r.Patch("/", h.UpdateSlotTemplate)
					r.Delete("/", h.DeleteSlotTemplate)
				})
			})

			r.Route("/exceptions", func(r chi.Router) {
				r.Post("/", h.CreateException)
				r.Get("/", h.GetAllExceptions)
				r.Post("/impact", h.PreviewExceptionImpact) // 只预览，不会保存
				r.Route("/{exceptionID}", func(r chi.Router) {
					r.Use(h.exception)
					r.Get("/", h.GetException)
					r.Patch("/", h.UpdateException)
					r.Delete("/", h.DeleteException)
				})
			})

			r.Route("/bookings", func(r chi.Router) {
				r.With(h.rateLimit).Post("/", h.CreateBooking)
				r.Get("/", h.GetBookings)
				r.Get("/export", h.ExportBookings)
				r.Route("/{bookingID}", func(r chi.Router) {
					r.Use(h.booking)
					r.Get("/", h.GetBooking)
					r.Delete("/", h.CancelBooking)
				})
			})
		})
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.Ping(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "ok", nil)
}
