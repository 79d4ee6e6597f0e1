package address

import "context"

// Repository serves the administrative hierarchy. It is read-only to the quoting engine.
type Repository interface {
	ListProvinces(ctx context.Context) ([]*Province, error)
	ListDistricts(ctx context.Context, provinceCode string) ([]*District, error)
	ListWards(ctx context.Context, districtCode string) ([]*Ward, error)

	// Resolve looks up every populated level of ref.
	// Returns ErrUnitNotFound if any code is unknown or does not belong to its parent.
	Resolve(ctx context.Context, ref UnitRef) (*Resolved, error)
}

// mostSpecificCenter picks the ward center, then district, then province.
func mostSpecificCenter(r *Resolved) {
	switch {
	case r.Ward != nil && r.Ward.Center != nil:
		r.Center = r.Ward.Center
	case r.District != nil && r.District.Center != nil:
		r.Center = r.District.Center
	case r.Province != nil:
		r.Center = r.Province.Center
	}
}
