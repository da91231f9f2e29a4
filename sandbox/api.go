package sandbox

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alovak/cardvault/gateway"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// API is the HTTP API of the sandbox gateway
type API struct {
	svc *Service
	cfg *Config
}

func NewAPI(svc *Service, cfg *Config) *API {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &API{
		svc: svc,
		cfg: cfg,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if a.cfg.MerchantKey != "" {
			r.Use(middleware.BasicAuth("sandbox", map[string]string{
				a.cfg.MerchantKey: a.cfg.MerchantPassword,
			}))
		}

		r.Post("/payment_methods", a.createPaymentMethod)
		r.Route("/payment_methods/{token}", func(r chi.Router) {
			r.Get("/", a.getPaymentMethod)
			r.Put("/", a.updatePaymentMethod)
			r.Post("/retain", a.retainPaymentMethod)
			r.Post("/redact", a.redactPaymentMethod)
		})

		r.Post("/processors/{processor}/{operation}", a.process)
		r.Post("/transactions/{transactionID}/{operation}", a.reference)
	})
}

func (a *API) createPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var p gateway.CardPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := a.svc.CreatePaymentMethod(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) getPaymentMethod(w http.ResponseWriter, r *http.Request) {
	resp, err := a.svc.GetPaymentMethod(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var p gateway.CardPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := a.svc.UpdatePaymentMethod(r.Context(), chi.URLParam(r, "token"), p)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) retainPaymentMethod(w http.ResponseWriter, r *http.Request) {
	resp, err := a.svc.RetainPaymentMethod(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) redactPaymentMethod(w http.ResponseWriter, r *http.Request) {
	resp, err := a.svc.RedactPaymentMethod(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) process(w http.ResponseWriter, r *http.Request) {
	if a.cfg.ProcessorToken != "" && chi.URLParam(r, "processor") != a.cfg.ProcessorToken {
		writeError(w, http.StatusNotFound, "processor not found")
		return
	}

	var p gateway.TransactionPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := a.svc.Process(r.Context(), chi.URLParam(r, "operation"), p)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) reference(w http.ResponseWriter, r *http.Request) {
	var p gateway.TransactionPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := a.svc.Reference(r.Context(), chi.URLParam(r, "transactionID"), chi.URLParam(r, "operation"), p)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode accepts an empty body.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, gateway.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
