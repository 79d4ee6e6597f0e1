package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
)

// AddressHandler serves the administrative hierarchy for address pickers.
type AddressHandler struct {
	units  address.Repository
	logger zerolog.Logger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(units address.Repository, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{units: units, logger: logger}
}

// ListProvinces handles GET /v1/address/provinces.
func (h *AddressHandler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.units.ListProvinces(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list := models.AdminUnitList{Items: make([]models.AdminUnit, 0, len(provinces))}
	for _, p := range provinces {
		list.Items = append(list.Items, models.AdminUnit{Code: p.Code, Name: p.Name, Type: p.Type, Center: toPoint(p.Center)})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// ListDistricts handles GET /v1/address/districts/{provinceCode}.
func (h *AddressHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.units.ListDistricts(r.Context(), chi.URLParam(r, "provinceCode"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list := models.AdminUnitList{Items: make([]models.AdminUnit, 0, len(districts))}
	for _, d := range districts {
		list.Items = append(list.Items, models.AdminUnit{
			Code: d.Code, Name: d.Name, Type: d.Type, ParentCode: d.ProvinceCode, Center: toPoint(d.Center),
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// ListWards handles GET /v1/address/wards/{districtCode}.
func (h *AddressHandler) ListWards(w http.ResponseWriter, r *http.Request) {
	wards, err := h.units.ListWards(r.Context(), chi.URLParam(r, "districtCode"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list := models.AdminUnitList{Items: make([]models.AdminUnit, 0, len(wards))}
	for _, wd := range wards {
		list.Items = append(list.Items, models.AdminUnit{
			Code: wd.Code, Name: wd.Name, Type: wd.Type, ParentCode: wd.DistrictCode, Center: toPoint(wd.Center),
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}
