package handlers

import (
	"net/http"

	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
)

// PaymentCallback absorbs gateway callbacks on both the success and failure
// return URLs. Whatever happens — unparseable payload, unknown transaction,
// forged signature — the renter's browser gets a redirect to an outcome
// page, never an error body.
func (h *Handlers) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	data, err := esewa.DecodeCallback(r)
	if err != nil {
		h.logger.Warn("undecodable payment callback", "error", err, "path", r.URL.Path)
		result := h.callback.DecodeFailure()
		http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
		return
	}

	result := h.callback.Handle(r.Context(), data)
	http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
}
