package security

import (
	"fmt"
	"net/http"
)

type HeadersConfig struct {
	CSP                   string
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	XFrameOptions         string
	ReferrerPolicy        string
	CrossOriginResource   string
}

// DefaultHeadersConfig suits a JSON API that never serves documents.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "no-referrer",
		CrossOriginResource:   "same-origin",
	}
}

// Headers sets the configured response headers and warns about requests the
// detector considers suspicious.
type Headers struct {
	config   HeadersConfig
	detector *Detector
}

func NewHeaders(config HeadersConfig, detector *Detector) *Headers {
	return &Headers{config: config, detector: detector}
}

func (h *Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.apply(w, r)
		if h.detector != nil {
			h.detector.Inspect(r)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Headers) apply(w http.ResponseWriter, r *http.Request) {
	hdr := w.Header()
	hdr.Set("X-Content-Type-Options", "nosniff")
	if h.config.XFrameOptions != "" {
		hdr.Set("X-Frame-Options", h.config.XFrameOptions)
	}
	if h.config.CSP != "" {
		hdr.Set("Content-Security-Policy", h.config.CSP)
	}
	if h.config.ReferrerPolicy != "" {
		hdr.Set("Referrer-Policy", h.config.ReferrerPolicy)
	}
	if h.config.CrossOriginResource != "" {
		hdr.Set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)
	}

	// HSTS only means something over TLS.
	if r.TLS != nil && h.config.HSTSMaxAge > 0 {
		v := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
		if h.config.HSTSIncludeSubdomains {
			v += "; includeSubDomains"
		}
		hdr.Set("Strict-Transport-Security", v)
	}
}
