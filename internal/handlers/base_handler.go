package handlers

import (
	"bytes"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/belphemur/storefront/internal/config"
	"github.com/belphemur/storefront/internal/database"
	"github.com/belphemur/storefront/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 64 << 10

// BaseHandler contains common handler functionality
type BaseHandler struct {
	tmpl          *template.Template
	RuntimeConfig *config.RuntimeConfig
	ShopStore     *database.ShopStore
	validate      *validator.Validate
	logger        zerolog.Logger
	cssETag       string
	// Now is the handler clock, replaceable in tests
	Now func() time.Time
}

// NewBaseHandler creates a common base handler with shared components
func NewBaseHandler(runtimeCfg *config.RuntimeConfig, shopStore *database.ShopStore, cssETag string) (*BaseHandler, error) {
	logger := logging.GetLogger("base-handler")
	logger.Debug().Msg("Parsing templates")

	// Parse only layout.html initially
	tmpl, err := template.New("").ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse templates")
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	logger.Debug().Msg("Templates parsed successfully")

	return &BaseHandler{
		tmpl:          tmpl,
		RuntimeConfig: runtimeCfg,
		ShopStore:     shopStore,
		validate:      newValidator(),
		logger:        logger,
		cssETag:       cssETag,
		Now:           time.Now,
	}, nil
}

// RenderTemplate renders a template with the given data
func (h *BaseHandler) RenderTemplate(w http.ResponseWriter, name string, data interface{}) {
	h.RenderTemplateStatus(w, http.StatusOK, name, data)
}

// RenderTemplateStatus renders a page template into the layout and writes it with status
func (h *BaseHandler) RenderTemplateStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	h.logger.Debug().Str("template_name", name).Int("status", status).Msg("Executing template")

	// Clone the base template (which contains layout.html)
	tmpl, err := h.tmpl.Clone()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to clone template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Parse the specific page template into the clone
	_, err = tmpl.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("Failed to parse page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("Failed to execute template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("Failed to write page")
	}
}

// CurrentTime returns the handler clock reading in the storefront timezone
func (h *BaseHandler) CurrentTime() time.Time {
	return h.RuntimeConfig.Now(h.Now())
}

// CheckAdmin reports whether the request carries the configured admin bearer token.
// With no token configured every write is refused.
func (h *BaseHandler) CheckAdmin(r *http.Request, logger zerolog.Logger) bool {
	expected := h.RuntimeConfig.Config().App.AdminToken
	if expected == "" {
		logger.Warn().Msg("No admin token configured, refusing write")
		return false
	}

	provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || provided == "" {
		logger.Debug().Msg("No bearer token provided")
		return false
	}

	if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		logger.Warn().Msg("Invalid admin token")
		return false
	}

	logger.Debug().Msg("Admin token accepted")
	return true
}

// RequireAdmin writes a 401 response and returns false when the request is not authorized
func (h *BaseHandler) RequireAdmin(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) bool {
	if h.CheckAdmin(r, logger) {
		return true
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="storefront"`)
	h.WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, logger)
	return false
}

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status code
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, v interface{}, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError writes an ErrorResponse for the given code
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, code string, logger zerolog.Logger, details ...string) {
	h.WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: GetErrorMessage(code),
		Details: details,
	}, logger)
}

// DecodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure the error response is already written and false is returned.
func (h *BaseHandler) DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode request body")
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidJSON, logger, err.Error())
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			details := describeValidationErrors(validationErrors)
			logger.Warn().Strs("details", details).Msg("Request validation failed")
			h.WriteError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, logger, details...)
			return false
		}
		logger.Error().Err(err).Msg("Validator rejected request type")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeUnknown, logger)
		return false
	}
	return true
}

// BasePageData contains common data for all pages
type BasePageData struct {
	CurrentYear int
	CurrentPath string
	CSSETag     string
}

// NewBasePageData creates a new BasePageData with common fields populated
func (h *BaseHandler) NewBasePageData(r *http.Request) BasePageData {
	return BasePageData{
		CurrentYear: h.CurrentTime().Year(),
		CurrentPath: r.URL.Path,
		CSSETag:     strings.Trim(h.cssETag, `"`),
	}
}
