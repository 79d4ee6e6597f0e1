package models

// AdminUnit is a province, district or ward.
type AdminUnit struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	ParentCode string `json:"parentCode,omitempty"`
	Center     *Point `json:"center,omitempty"`
}

// AdminUnitList wraps a list of units.
type AdminUnitList struct {
	Items []AdminUnit `json:"items"`
}
