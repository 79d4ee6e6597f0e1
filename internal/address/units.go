package address

import (
	"errors"
	"strings"

	"github.com/tripfare/tripfare/internal/geo"
)

// ErrUnitNotFound indicates an administrative code does not exist.
var ErrUnitNotFound = errors.New("administrative unit not found")

// Level is the depth of an administrative unit.
type Level int

const (
	LevelNone Level = iota
	LevelProvince
	LevelDistrict
	LevelWard
)

func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelDistrict:
		return "district"
	case LevelWard:
		return "ward"
	default:
		return "none"
	}
}

// UnitRef points into the province > district > ward hierarchy by code.
type UnitRef struct {
	ProvinceCode string `json:"province_code,omitempty"`
	DistrictCode string `json:"district_code,omitempty"`
	WardCode     string `json:"ward_code,omitempty"`
}

// IsZero reports whether no province is set.
func (r UnitRef) IsZero() bool {
	return r.ProvinceCode == ""
}

// Level returns how many levels are populated, which is the specificity of a fixed route.
func (r UnitRef) Level() Level {
	switch {
	case r.ProvinceCode == "":
		return LevelNone
	case r.DistrictCode == "":
		return LevelProvince
	case r.WardCode == "":
		return LevelDistrict
	default:
		return LevelWard
	}
}

// Truncate keeps the levels down to and including l.
func (r UnitRef) Truncate(l Level) UnitRef {
	out := UnitRef{}
	if l >= LevelProvince {
		out.ProvinceCode = r.ProvinceCode
	}
	if l >= LevelDistrict {
		out.DistrictCode = r.DistrictCode
	}
	if l >= LevelWard {
		out.WardCode = r.WardCode
	}
	return out
}

// Province is a first-level unit (tỉnh / thành phố).
type Province struct {
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Type   string     `json:"type,omitempty"`
	Center *geo.Point `json:"center,omitempty"`
}

// District is a second-level unit (quận / huyện / thị xã).
type District struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Type         string     `json:"type,omitempty"`
	ProvinceCode string     `json:"province_code"`
	Center       *geo.Point `json:"center,omitempty"`
}

// Ward is a third-level unit (phường / xã / thị trấn).
type Ward struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Type         string     `json:"type,omitempty"`
	DistrictCode string     `json:"district_code"`
	Center       *geo.Point `json:"center,omitempty"`
}

// Resolved is a UnitRef with names and the most specific known center.
type Resolved struct {
	Ref      UnitRef    `json:"ref"`
	Province *Province  `json:"province"`
	District *District  `json:"district,omitempty"`
	Ward     *Ward      `json:"ward,omitempty"`
	Center   *geo.Point `json:"center,omitempty"`
}

// FullName renders "ward, district, province" for display and text matching.
func (r *Resolved) FullName() string {
	var parts []string
	if r.Ward != nil {
		parts = append(parts, r.Ward.Name)
	}
	if r.District != nil {
		parts = append(parts, r.District.Name)
	}
	if r.Province != nil {
		parts = append(parts, r.Province.Name)
	}
	return strings.Join(parts, ", ")
}
