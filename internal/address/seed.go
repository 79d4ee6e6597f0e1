package address

import "github.com/tripfare/tripfare/internal/geo"

// Seed loads a small set of administrative units, numbered as GSO codes, for local
// runs without a database: the southern corridor out of Ho Chi Minh City
// plus the two other municipalities most trips start from.
func Seed(r *MemoryRepository) {
	pt := func(lat, lon float64) *geo.Point { return &geo.Point{Lat: lat, Lon: lon} }

	for _, p := range []Province{
		{Code: "01", Name: "Thành phố Hà Nội", Type: "Thành phố Trung ương", Center: pt(21.028511, 105.804817)},
		{Code: "48", Name: "Thành phố Đà Nẵng", Type: "Thành phố Trung ương", Center: pt(16.054407, 108.202167)},
		{Code: "77", Name: "Tỉnh Bà Rịa - Vũng Tàu", Type: "Tỉnh", Center: pt(10.541739, 107.242997)},
		{Code: "79", Name: "Thành phố Hồ Chí Minh", Type: "Thành phố Trung ương", Center: pt(10.776889, 106.700806)},
	} {
		r.AddProvince(p)
	}

	for _, d := range []District{
		{Code: "001", Name: "Quận Ba Đình", Type: "Quận", ProvinceCode: "01", Center: pt(21.035800, 105.814400)},
		{Code: "002", Name: "Quận Hoàn Kiếm", Type: "Quận", ProvinceCode: "01", Center: pt(21.028800, 105.852300)},
		{Code: "490", Name: "Quận Liên Chiểu", Type: "Quận", ProvinceCode: "48", Center: pt(16.071700, 108.150300)},
		{Code: "492", Name: "Quận Hải Châu", Type: "Quận", ProvinceCode: "48", Center: pt(16.047500, 108.219900)},
		{Code: "747", Name: "Thành phố Vũng Tàu", Type: "Thành phố", ProvinceCode: "77", Center: pt(10.345990, 107.084259)},
		{Code: "760", Name: "Quận 1", Type: "Quận", ProvinceCode: "79", Center: pt(10.775659, 106.700424)},
		{Code: "765", Name: "Quận Bình Thạnh", Type: "Quận", ProvinceCode: "79", Center: pt(10.810583, 106.709145)},
		{Code: "766", Name: "Quận Tân Bình", Type: "Quận", ProvinceCode: "79", Center: pt(10.801466, 106.652597)},
		{Code: "769", Name: "Thành phố Thủ Đức", Type: "Thành phố", ProvinceCode: "79", Center: pt(10.849409, 106.753706)},
		{Code: "778", Name: "Quận 7", Type: "Quận", ProvinceCode: "79", Center: pt(10.732599, 106.719749)},
	} {
		r.AddDistrict(d)
	}

	for _, w := range []Ward{
		{Code: "26734", Name: "Phường Tân Định", Type: "Phường", DistrictCode: "760"},
		{Code: "26740", Name: "Phường Bến Nghé", Type: "Phường", DistrictCode: "760", Center: pt(10.780600, 106.702200)},
		{Code: "26743", Name: "Phường Bến Thành", Type: "Phường", DistrictCode: "760", Center: pt(10.772500, 106.698000)},
		{Code: "26526", Name: "Phường 1", Type: "Phường", DistrictCode: "747"},
		{Code: "26509", Name: "Phường Thắng Tam", Type: "Phường", DistrictCode: "747", Center: pt(10.345200, 107.090400)},
	} {
		r.AddWard(w)
	}
}
