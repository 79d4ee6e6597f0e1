package address

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository.
type MemoryRepository struct {
	mu        sync.RWMutex
	provinces map[string]*Province
	districts map[string]*District
	wards     map[string]*Ward
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory address repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		provinces: make(map[string]*Province),
		districts: make(map[string]*District),
		wards:     make(map[string]*Ward),
	}
}

// AddProvince stores a province.
func (r *MemoryRepository) AddProvince(p Province) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provinces[p.Code] = &p
}

// AddDistrict stores a district.
func (r *MemoryRepository) AddDistrict(d District) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.districts[d.Code] = &d
}

// AddWard stores a ward.
func (r *MemoryRepository) AddWard(w Ward) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wards[w.Code] = &w
}

// ListProvinces returns all provinces ordered by name.
func (r *MemoryRepository) ListProvinces(_ context.Context) ([]*Province, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Province, 0, len(r.provinces))
	for _, p := range r.provinces {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListDistricts returns the districts of a province ordered by name.
func (r *MemoryRepository) ListDistricts(_ context.Context, provinceCode string) ([]*District, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*District
	for _, d := range r.districts {
		if d.ProvinceCode == provinceCode {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListWards returns the wards of a district ordered by name.
func (r *MemoryRepository) ListWards(_ context.Context, districtCode string) ([]*Ward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Ward
	for _, w := range r.wards {
		if w.DistrictCode == districtCode {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Resolve looks up every populated level of ref.
func (r *MemoryRepository) Resolve(_ context.Context, ref UnitRef) (*Resolved, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.provinces[ref.ProvinceCode]
	if !ok {
		return nil, ErrUnitNotFound
	}
	pc := *p
	res := &Resolved{Ref: ref, Province: &pc}

	if ref.DistrictCode != "" {
		d, ok := r.districts[ref.DistrictCode]
		if !ok || d.ProvinceCode != ref.ProvinceCode {
			return nil, ErrUnitNotFound
		}
		dc := *d
		res.District = &dc
	}

	if ref.WardCode != "" {
		w, ok := r.wards[ref.WardCode]
		if !ok || w.DistrictCode != ref.DistrictCode {
			return nil, ErrUnitNotFound
		}
		wc := *w
		res.Ward = &wc
	}

	mostSpecificCenter(res)
	return res, nil
}
