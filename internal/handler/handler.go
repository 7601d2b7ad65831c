// Package handler exposes the discount engine over HTTP.
package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/discount"
	"github.com/xenking/tour-discount/internal/domain/promotion"
	"github.com/xenking/tour-discount/internal/domain/rule"
	"github.com/xenking/tour-discount/internal/wire"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 1 << 20

// Discounts is the discount engine as used by the HTTP layer.
type Discounts interface {
	Calculate(ctx context.Context, req discount.Request) discount.Result
	ValidateCondition(ctx context.Context, id int64, b booking.Booking) (rule.ValidationResult, error)
	ValidateCoupon(ctx context.Context, code string, b booking.Booking) (rule.ValidationResult, error)
	ListApplicableConditions(ctx context.Context, b booking.Booking) ([]condition.Condition, error)
	ListApplicableCoupons(ctx context.Context, b booking.Booking) ([]coupon.Coupon, error)
}

// ConditionStore reads and maintains discount conditions.
type ConditionStore interface {
	condition.Repository
	Upsert(ctx context.Context, c condition.Condition) error
	Delete(ctx context.Context, id int64) error
}

// CouponStore reads and retires coupons.
type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	Delete(ctx context.Context, code string) error
}

// PromotionStore reads and maintains promotions.
type PromotionStore interface {
	promotion.Repository
	Save(ctx context.Context, p promotion.Promotion) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Option configures a Handler.
type Option func(h *Handler)

// WithClock sets the clock used for defaulting the booking date and for
// listing running promotions.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithConditionInvalidator registers a hook run after a condition was
// written or deleted, typically dropping cached copies.
func WithConditionInvalidator(fn func(ctx context.Context, ids ...int64) error) Option {
	return func(h *Handler) {
		h.invalidate = fn
	}
}

// WithCouponInvalidator registers a hook run after a coupon was deleted.
func WithCouponInvalidator(fn func(ctx context.Context, codes ...string) error) Option {
	return func(h *Handler) {
		h.evictCoupons = fn
	}
}

// Handler serves the discount API.
type Handler struct {
	discounts    Discounts
	conditions   ConditionStore
	coupons      CouponStore
	promotions   PromotionStore
	now          func() time.Time
	invalidate   func(ctx context.Context, ids ...int64) error
	evictCoupons func(ctx context.Context, codes ...string) error
}

// New returns a Handler. The stores serve the admin catalogue directly and
// are independent of the cached stores the engine reads through.
func New(
	discounts Discounts,
	conditions ConditionStore,
	coupons CouponStore,
	promotions PromotionStore,
	opts ...Option,
) *Handler {
	h := &Handler{
		discounts:  discounts,
		conditions: conditions,
		coupons:    coupons,
		promotions: promotions,
		now:        time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes returns the router serving every API endpoint under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/discount", func(r chi.Router) {
			r.Post("/calculate", h.Calculate)
			r.Post("/conditions/applicable", h.ApplicableConditions)
			r.Post("/coupons/applicable", h.ApplicableCoupons)
			r.Post("/conditions/{id}/validate", h.ValidateCondition)
			r.Post("/coupons/{code}/validate", h.ValidateCoupon)
		})
		r.Route("/conditions", func(r chi.Router) {
			r.Get("/", h.ListConditions)
			r.Get("/{id}", h.GetCondition)
			r.Put("/{id}", h.PutCondition)
			r.Delete("/{id}", h.DeleteCondition)
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/{code}", h.GetCoupon)
			r.Delete("/{code}", h.DeleteCoupon)
		})
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", h.ListPromotions)
			r.Post("/", h.CreatePromotion)
			r.Get("/{id}", h.GetPromotion)
			r.Put("/{id}", h.PutPromotion)
			r.Delete("/{id}", h.DeletePromotion)
		})
	})
	return r
}

// errBodyTooLarge is reported when a request body exceeds MaxBodySize.
var errBodyTooLarge = errors.New("request body too large")

// decodeBody reads the bounded request body and hands it to decode.
func decodeBody(r *http.Request, decode func(d *jx.Decoder) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if len(data) > MaxBodySize {
		return errBodyTooLarge
	}
	if len(data) == 0 {
		return errors.New("request body is empty")
	}
	return decode(jx.DecodeBytes(data))
}

// decodeBooking reads a bare booking body, defaulting the booking date to now.
func (h *Handler) decodeBooking(r *http.Request) (booking.Booking, error) {
	var b booking.Booking
	err := decodeBody(r, func(d *jx.Decoder) (err error) {
		b, err = wire.DecodeBooking(d)
		return err
	})
	if err != nil {
		return booking.Booking{}, err
	}
	h.defaultBookingDate(&b)
	return b, nil
}

func (h *Handler) defaultBookingDate(b *booking.Booking) {
	if b.BookingDate.IsZero() {
		b.BookingDate = h.now()
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) { wire.EncodeError(e, status, message) })
}

// writeBadRequest reports a client-side decoding problem.
func writeBadRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeInternal logs err and responds with an opaque 500.
func writeInternal(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	zctx.From(ctx).Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
