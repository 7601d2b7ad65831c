package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/discount"
	"github.com/xenking/tour-discount/internal/wire"
)

// Calculate handles POST /api/discount/calculate. Calculation faults are
// reported in the result body with status 200.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req discount.Request
	err := decodeBody(r, func(d *jx.Decoder) (err error) {
		req, err = wire.DecodeCalculateRequest(d)
		return err
	})
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	h.defaultBookingDate(&req.Booking)

	res := h.discounts.Calculate(r.Context(), req)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeResult(e, res) })
}

// ApplicableConditions handles POST /api/discount/conditions/applicable.
func (h *Handler) ApplicableConditions(w http.ResponseWriter, r *http.Request) {
	b, err := h.decodeBooking(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	list, err := h.discounts.ListApplicableConditions(r.Context(), b)
	if err != nil {
		writeInternal(r.Context(), w, "List applicable conditions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeConditions(e, list) })
}

// ApplicableCoupons handles POST /api/discount/coupons/applicable.
func (h *Handler) ApplicableCoupons(w http.ResponseWriter, r *http.Request) {
	b, err := h.decodeBooking(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	list, err := h.discounts.ListApplicableCoupons(r.Context(), b)
	if err != nil {
		writeInternal(r.Context(), w, "List applicable coupons failed", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeCoupons(e, list) })
}

// ValidateCondition handles POST /api/discount/conditions/{id}/validate.
func (h *Handler) ValidateCondition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	b, err := h.decodeBooking(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	res, err := h.discounts.ValidateCondition(r.Context(), id, b)
	if err != nil {
		writeInternal(r.Context(), w, "Validate condition failed", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeValidation(e, res) })
}

// ValidateCoupon handles POST /api/discount/coupons/{code}/validate.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	b, err := h.decodeBooking(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	res, err := h.discounts.ValidateCoupon(r.Context(), code, b)
	if err != nil {
		writeInternal(r.Context(), w, "Validate coupon failed", err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { wire.EncodeValidation(e, res) })
}
