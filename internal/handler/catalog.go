package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/promotion"
	"github.com/xenking/tour-discount/internal/wire"
)

// ListConditions handles GET /api/conditions: every enabled condition.
func (h *Handler) ListConditions(w http.ResponseWriter, r *http.Request) {
	list, err := h.conditions.ListEnabled(r.Context())
	if err != nil {
		writeInternal(r.Context(), w, "List conditions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeConditions(e, list) })
}

// GetCondition handles GET /api/conditions/{id}.
func (h *Handler) GetCondition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	c, err := h.conditions.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, condition.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeInternal(r.Context(), w, "Get condition failed", err)
	default:
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeCondition(e, *c) })
	}
}

// PutCondition handles PUT /api/conditions/{id}, creating or replacing the
// condition. The path id wins over any id in the body.
func (h *Handler) PutCondition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var c condition.Condition
	if err := decodeBody(r, func(d *jx.Decoder) (err error) {
		c, err = wire.DecodeCondition(d)
		return err
	}); err != nil {
		writeBadRequest(w, err)
		return
	}
	c.ID = id
	if err := validateCondition(c); err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := h.conditions.Upsert(r.Context(), c); err != nil {
		writeInternal(r.Context(), w, "Upsert condition failed", err)
		return
	}
	h.invalidateCondition(r, id)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeCondition(e, c) })
}

// DeleteCondition handles DELETE /api/conditions/{id}.
func (h *Handler) DeleteCondition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	err = h.conditions.Delete(r.Context(), id)
	switch {
	case errors.Is(err, condition.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeInternal(r.Context(), w, "Delete condition failed", err)
	default:
		h.invalidateCondition(r, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) invalidateCondition(r *http.Request, id int64) {
	if h.invalidate == nil {
		return
	}
	if err := h.invalidate(r.Context(), id); err != nil {
		zctx.From(r.Context()).Warn("Condition cache invalidation failed",
			zap.Int64("condition_id", id),
			zap.Error(err),
		)
	}
}

func validateCondition(c condition.Condition) error {
	switch c.Kind {
	case condition.KindImmediate, condition.KindPeriod:
	default:
		return errors.Errorf("invalid kind %q", c.Kind)
	}
	switch c.AmountKind {
	case condition.AmountFixed, condition.AmountPercentage:
	default:
		return errors.Errorf("invalid amountKind %q", c.AmountKind)
	}
	if c.Value.IsNegative() {
		return errors.New("value must not be negative")
	}
	if c.Target == "" {
		return errors.New("target is required")
	}
	return nil
}

// GetCoupon handles GET /api/coupons/{code}.
func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.FindByCode(r.Context(), chi.URLParam(r, "code"))
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeInternal(r.Context(), w, "Get coupon failed", err)
	default:
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeCoupon(e, *c) })
	}
}

// DeleteCoupon handles DELETE /api/coupons/{code}, retiring the coupon and
// evicting its cached copy.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	err := h.coupons.Delete(r.Context(), code)
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeInternal(r.Context(), w, "Delete coupon failed", err)
	default:
		h.evictCoupon(r, code)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) evictCoupon(r *http.Request, code string) {
	if h.evictCoupons == nil {
		return
	}
	if err := h.evictCoupons(r.Context(), code); err != nil {
		zctx.From(r.Context()).Warn("Coupon cache invalidation failed",
			zap.String("coupon_code", code),
			zap.Error(err),
		)
	}
}

// ListPromotions handles GET /api/promotions: promotions running now.
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	list, err := h.promotions.ListActive(r.Context(), h.now())
	if err != nil {
		writeInternal(r.Context(), w, "List promotions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodePromotions(e, list) })
}

// GetPromotion handles GET /api/promotions/{id}.
func (h *Handler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	p, err := h.promotions.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, promotion.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeInternal(r.Context(), w, "Get promotion failed", err)
	default:
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodePromotion(e, *p) })
	}
}

// CreatePromotion handles POST /api/promotions. Promotions are keyed by
// number, so posting an existing number replaces that promotion.
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	p, err := decodePromotion(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	id, ok := h.savePromotion(w, r, p)
	if !ok {
		return
	}
	w.Header().Set("Location", "/api/promotions/"+strconv.FormatInt(id, 10))
	h.writePromotion(w, r, id, http.StatusCreated)
}

// PutPromotion handles PUT /api/promotions/{id}, replacing an existing
// promotion and its links. The number may be omitted but not changed.
func (h *Handler) PutPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	p, err := decodePromotion(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if p.ID != 0 && p.ID != id {
		writeError(w, http.StatusBadRequest, "id does not match path")
		return
	}

	existing, err := h.promotions.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, promotion.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeInternal(r.Context(), w, "Get promotion failed", err)
		return
	}
	if p.Number == 0 {
		p.Number = existing.Number
	}
	if p.Number != existing.Number {
		writeError(w, http.StatusBadRequest, "number cannot change")
		return
	}

	if _, ok := h.savePromotion(w, r, p); !ok {
		return
	}
	h.writePromotion(w, r, id, http.StatusOK)
}

// DeletePromotion handles DELETE /api/promotions/{id}.
func (h *Handler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	err = h.promotions.Delete(r.Context(), id)
	switch {
	case errors.Is(err, promotion.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeInternal(r.Context(), w, "Delete promotion failed", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodePromotion(r *http.Request) (promotion.Promotion, error) {
	var p promotion.Promotion
	err := decodeBody(r, func(d *jx.Decoder) (err error) {
		p, err = wire.DecodePromotion(d)
		return err
	})
	return p, err
}

// savePromotion validates and stores p, writing the error response itself
// when it fails.
func (h *Handler) savePromotion(w http.ResponseWriter, r *http.Request, p promotion.Promotion) (int64, bool) {
	if err := validatePromotion(p); err != nil {
		writeBadRequest(w, err)
		return 0, false
	}
	id, err := h.promotions.Save(r.Context(), p)
	if err != nil {
		writeInternal(r.Context(), w, "Save promotion failed", err)
		return 0, false
	}
	return id, true
}

// writePromotion reads the stored promotion back so the response carries the
// links as persisted.
func (h *Handler) writePromotion(w http.ResponseWriter, r *http.Request, id int64, status int) {
	p, err := h.promotions.FindByID(r.Context(), id)
	if err != nil {
		writeInternal(r.Context(), w, "Read saved promotion failed", err)
		return
	}
	writeJSON(w, status, func(e *jx.Encoder) { wire.EncodePromotion(e, *p) })
}

func validatePromotion(p promotion.Promotion) error {
	if p.Number <= 0 {
		return errors.New("number must be positive")
	}
	switch p.Status {
	case promotion.StatusActive, promotion.StatusEnded, promotion.StatusWaiting:
	default:
		return errors.Errorf("invalid status %q", p.Status)
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return errors.New("start and end are required")
	}
	if p.End.Before(p.Start) {
		return errors.New("end is before start")
	}
	if p.Budget.IsNegative() || p.Support.IsNegative() {
		return errors.New("budget and support must not be negative")
	}
	for _, l := range p.Conditions {
		if l.RuleID <= 0 {
			return errors.New("condition link requires ruleId")
		}
	}
	for _, l := range p.Coupons {
		if l.Code == "" {
			return errors.New("coupon link requires code")
		}
	}
	return nil
}
