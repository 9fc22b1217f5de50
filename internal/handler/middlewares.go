package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
	"golang.org/x/time/rate"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

const (
	limiterIdleTTL       = 10 * time.Minute // 超过这个时间没有请求的 IP 会被清理
	limiterSweepInterval = time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		l.sweep(now)
	}
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// sweep 需要在持有锁时调用
func (l *ipRateLimiter) sweep(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimit 限制同一个 IP 创建预订的频率
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !h.limiter.allow(ip) {
			slog.Warn("请求被限流", "ip", ip, "path", r.URL.Path)
			h.tooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) establishment(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.errorResponse(w, r, "餐厅ID无效")
			return
		}

		est, err := h.repository.GetEstablishmentByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "餐厅不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), EstablishmentCtx, est)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) slotTemplate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

		id, err := uuid.Parse(chi.URLParam(r, "templateID"))
		if err != nil {
			h.errorResponse(w, r, "时段模板ID无效")
			return
		}

		st, err := h.repository.GetSlotTemplateByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "时段模板不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if st.EstablishmentID != est.ID {
			h.errorResponse(w, r, "时段模板不存在")
			return
		}

		ctx := context.WithValue(r.Context(), SlotTemplateCtx, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) exception(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

		id, err := uuid.Parse(chi.URLParam(r, "exceptionID"))
		if err != nil {
			h.errorResponse(w, r, "例外ID无效")
			return
		}

		e, err := h.repository.GetExceptionByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "例外不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if e.EstablishmentID != est.ID {
			h.errorResponse(w, r, "例外不存在")
			return
		}

		ctx := context.WithValue(r.Context(), ExceptionCtx, e)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) booking(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		est := r.Context().Value(EstablishmentCtx).(*domain.Establishment)

		id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
		if err != nil {
			h.errorResponse(w, r, "预订ID无效")
			return
		}

		b, err := h.repository.GetBookingByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "预订不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if b.EstablishmentID != est.ID {
			h.errorResponse(w, r, "预订不存在")
			return
		}

		ctx := context.WithValue(r.Context(), BookingCtx, b)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
