package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/settings"
)

// SettingsService is the runtime settings store as seen by admin endpoints.
type SettingsService interface {
	All(ctx context.Context) map[string]*settings.Setting
	Set(ctx context.Context, values ...*settings.Setting) error
	Reset(ctx context.Context, key string) error
	Invalidate()
	ActiveFareConfig(ctx context.Context) string
}

// AdminHandler manages fare configurations, fixed routes and settings.
// Routes are expected to be reachable from the internal network only.
type AdminHandler struct {
	configs  fare.Repository
	routes   fixedroute.Repository
	settings SettingsService
	logger   zerolog.Logger
}

// AdminHandlerConfig holds the stores behind the admin endpoints.
type AdminHandlerConfig struct {
	Configs  fare.Repository
	Routes   fixedroute.Repository
	Settings SettingsService
	Logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg AdminHandlerConfig) *AdminHandler {
	return &AdminHandler{
		configs:  cfg.Configs,
		routes:   cfg.Routes,
		settings: cfg.Settings,
		logger:   cfg.Logger,
	}
}

// ListFareConfigs handles GET /v1/admin/fare-configs.
func (h *AdminHandler) ListFareConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configs.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list := models.FareConfigList{
		Items:  make([]models.FareConfig, 0, len(configs)),
		Active: h.settings.ActiveFareConfig(r.Context()),
	}
	for _, c := range configs {
		list.Items = append(list.Items, toFareConfig(c))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetFareConfig handles GET /v1/admin/fare-configs/{name}.
func (h *AdminHandler) GetFareConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Get(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, fare.ErrConfigNotFound) {
		response.NotFound(w, r, "fare configuration not found")
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toFareConfig(cfg))
}

// PutFareConfig handles PUT /v1/admin/fare-configs/{name} - create or replace.
func (h *AdminHandler) PutFareConfig(w http.ResponseWriter, r *http.Request) {
	var input models.FareConfigInput
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	name := chi.URLParam(r, "name")
	cfg, err := fareConfigFromInput(name, input)
	if err == nil {
		err = h.configs.Upsert(r.Context(), cfg)
	}
	var configErr *fare.ConfigError
	if errors.As(err, &configErr) {
		response.BadRequest(w, r, "invalid fare configuration", []models.FieldError{
			{Field: configErr.Field, Message: configErr.Reason},
		})
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info().Str("fare_config", name).Str("model", string(cfg.Model)).Msg("fare config saved")

	stored, err := h.configs.Get(r.Context(), name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toFareConfig(stored))
}

// DeleteFareConfig handles DELETE /v1/admin/fare-configs/{name}. The active
// configuration cannot be deleted.
func (h *AdminHandler) DeleteFareConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == h.settings.ActiveFareConfig(r.Context()) {
		response.Conflict(w, r, fmt.Sprintf("fare configuration %q is active; select another one first", name))
		return
	}

	err := h.configs.Delete(r.Context(), name)
	if errors.Is(err, fare.ErrConfigNotFound) {
		response.NotFound(w, r, "fare configuration not found")
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info().Str("fare_config", name).Msg("fare config deleted")
	response.NoContent(w, r)
}

// ListFixedRoutes handles GET /v1/admin/fixed-routes?q=&active=.
func (h *AdminHandler) ListFixedRoutes(w http.ResponseWriter, r *http.Request) {
	var (
		routes []*fixedroute.Route
		err    error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		routes, err = h.routes.Search(r.Context(), q)
	} else {
		routes, err = h.routes.List(r.Context(), r.URL.Query().Get("active") == "true")
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	list := models.FixedRouteList{Items: make([]models.FixedRoute, 0, len(routes))}
	for _, rt := range routes {
		list.Items = append(list.Items, toFixedRoute(rt))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetFixedRoute handles GET /v1/admin/fixed-routes/{routeId}.
func (h *AdminHandler) GetFixedRoute(w http.ResponseWriter, r *http.Request) {
	route, err := h.routes.Get(r.Context(), chi.URLParam(r, "routeId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toFixedRoute(route))
}

// CreateFixedRoute handles POST /v1/admin/fixed-routes.
func (h *AdminHandler) CreateFixedRoute(w http.ResponseWriter, r *http.Request) {
	var input models.FixedRouteInput
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "name", Message: "is required"}})
		return
	}

	route := fixedRouteFromInput(input)
	if err := h.routes.Create(r.Context(), route); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info().Str("route_id", route.ID).Float64("price", route.Price).Msg("fixed route created")
	response.Created(w, r, "/v1/admin/fixed-routes/"+route.ID, toFixedRoute(route))
}

// UpdateFixedRoute handles PUT /v1/admin/fixed-routes/{routeId}. The route
// keeps its active flag.
func (h *AdminHandler) UpdateFixedRoute(w http.ResponseWriter, r *http.Request) {
	var input models.FixedRouteInput
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	existing, err := h.routes.Get(r.Context(), chi.URLParam(r, "routeId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	route := fixedRouteFromInput(input)
	route.ID = existing.ID
	route.Active = existing.Active
	route.CreatedAt = existing.CreatedAt
	if route.Name == "" {
		route.Name = existing.Name
	}
	if err := h.routes.Update(r.Context(), route); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toFixedRoute(route))
}

// DeleteFixedRoute handles DELETE /v1/admin/fixed-routes/{routeId} - soft delete.
func (h *AdminHandler) DeleteFixedRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "routeId")
	if err := h.routes.Deactivate(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info().Str("route_id", id).Msg("fixed route deactivated")
	response.NoContent(w, r)
}

// ListSettings handles GET /v1/admin/settings.
func (h *AdminHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all := h.settings.All(r.Context())
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := models.SettingsList{Items: make([]models.Setting, 0, len(keys))}
	for _, k := range keys {
		s := all[k]
		item := models.Setting{Key: k, Value: s.Value}
		if !s.UpdatedAt.IsZero() {
			ts := models.Timestamp(s.UpdatedAt)
			item.UpdatedAt = &ts
		}
		list.Items = append(list.Items, item)
	}
	response.JSON(w, r, http.StatusOK, list)
}

// UpdateSettings handles PUT /v1/admin/settings. Only known keys are accepted
// and all values are written together.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input models.SettingsUpdate
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if len(input.Settings) == 0 {
		response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "settings", Message: "is required"}})
		return
	}

	keys := make([]string, 0, len(input.Settings))
	for k := range input.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		fieldErrs []models.FieldError
		values    []*settings.Setting
	)
	for _, k := range keys {
		v := input.Settings[k]
		if msg := h.checkSetting(r.Context(), k, v); msg != "" {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "settings." + k, Message: msg})
			continue
		}
		values = append(values, &settings.Setting{Key: k, Value: v})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrs)
		return
	}

	if err := h.settings.Set(r.Context(), values...); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.ListSettings(w, r)
}

func (h *AdminHandler) checkSetting(ctx context.Context, key string, value any) string {
	switch key {
	case settings.KeyRoutingProviderEnabled:
		if _, ok := value.(bool); !ok {
			return "must be a boolean"
		}
	case settings.KeyActiveFareConfig:
		name, ok := value.(string)
		if !ok || name == "" {
			return "must be a fare configuration name"
		}
		if _, err := h.configs.Get(ctx, name); err != nil {
			if errors.Is(err, fare.ErrConfigNotFound) {
				return fmt.Sprintf("fare configuration %q does not exist", name)
			}
			h.logger.Warn().Err(err).Str("fare_config", name).Msg("could not verify fare config")
		}
	default:
		return "unknown setting"
	}
	return ""
}

// ResetSetting handles DELETE /v1/admin/settings/{key} - restore the default.
func (h *AdminHandler) ResetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := settings.Defaults()[key]; !ok {
		response.NotFound(w, r, "unknown setting")
		return
	}
	err := h.settings.Reset(r.Context(), key)
	if err != nil && !errors.Is(err, settings.ErrSettingNotFound) {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// InvalidateSettings handles POST /v1/admin/settings/invalidate - drop cached values.
func (h *AdminHandler) InvalidateSettings(w http.ResponseWriter, r *http.Request) {
	h.settings.Invalidate()
	response.NoContent(w, r)
}
