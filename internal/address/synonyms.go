package address

// provinceAliases maps a canonical province name to the spellings people type for it.
var provinceAliases = map[string][]string{
	"hồ chí minh":     {"tp.hcm", "tphcm", "ho chi minh", "thành phố hồ chí minh", "saigon", "sài gòn", "hcm"},
	"hà nội":          {"hanoi", "thủ đô", "thành phố hà nội", "hn"},
	"đà nẵng":         {"da nang", "thành phố đà nẵng", "danang"},
	"cần thơ":         {"can tho", "thành phố cần thơ", "cantho"},
	"bến tre":         {"ben tre", "tỉnh bến tre", "bentre"},
	"an giang":        {"angiang", "tỉnh an giang"},
	"bà rịa vũng tàu": {"ba ria vung tau", "vung tau", "vũng tàu", "brvt"},
	"bắc giang":       {"bac giang", "tỉnh bắc giang"},
	"bắc kạn":         {"bac kan", "tỉnh bắc kạn"},
	"bạc liêu":        {"bac lieu", "tỉnh bạc liêu"},
	"bắc ninh":        {"bac ninh", "tỉnh bắc ninh"},
	"bình định":       {"binh dinh", "tỉnh bình định"},
	"bình dương":      {"binh duong", "tỉnh bình dương"},
	"bình phước":      {"binh phuoc", "tỉnh bình phước"},
	"bình thuận":      {"binh thuan", "tỉnh bình thuận"},
	"cà mau":          {"ca mau", "tỉnh cà mau"},
	"cao bằng":        {"cao bang", "tỉnh cao bằng"},
	"đắk lắk":         {"dak lak", "daklak"},
	"đắk nông":        {"dak nong"},
	"điện biên":       {"dien bien", "tỉnh điện biên"},
	"đồng nai":        {"dong nai", "tỉnh đồng nai"},
	"đồng tháp":       {"dong thap", "tỉnh đồng tháp"},
	"gia lai":         {"gialai", "tỉnh gia lai"},
	"hà giang":        {"ha giang", "tỉnh hà giang"},
	"hà nam":          {"ha nam", "tỉnh hà nam"},
	"hà tĩnh":         {"ha tinh", "tỉnh hà tĩnh"},
	"hải dương":       {"hai duong", "tỉnh hải dương"},
	"hải phòng":       {"hai phong", "thành phố hải phòng"},
	"hậu giang":       {"hau giang", "tỉnh hậu giang"},
	"hòa bình":        {"hoa binh", "tỉnh hòa bình"},
	"hưng yên":        {"hung yen", "tỉnh hưng yên"},
	"khánh hòa":       {"khanh hoa", "tỉnh khánh hòa", "nha trang"},
	"kiên giang":      {"kien giang", "tỉnh kiên giang"},
	"kon tum":         {"kontum", "tỉnh kon tum"},
	"lai châu":        {"lai chau", "tỉnh lai châu"},
	"lâm đồng":        {"lam dong", "tỉnh lâm đồng", "đà lạt"},
	"lạng sơn":        {"lang son", "tỉnh lạng sơn"},
	"lào cai":         {"lao cai", "tỉnh lào cai"},
	"long an":         {"longan", "tỉnh long an"},
	"nam định":        {"nam dinh", "tỉnh nam định"},
	"nghệ an":         {"nghe an", "tỉnh nghệ an"},
	"ninh bình":       {"ninh binh", "tỉnh ninh bình"},
	"ninh thuận":      {"ninh thuan", "tỉnh ninh thuận"},
	"phú thọ":         {"phu tho", "tỉnh phú thọ"},
	"phú yên":         {"phu yen", "tỉnh phú yên"},
	"quảng bình":      {"quang binh", "tỉnh quảng bình"},
	"quảng nam":       {"quang nam", "tỉnh quảng nam"},
	"quảng ngãi":      {"quang ngai", "tỉnh quảng ngãi"},
	"quảng ninh":      {"quang ninh", "tỉnh quảng ninh", "hạ long"},
	"quảng trị":       {"quang tri", "tỉnh quảng trị"},
	"sóc trăng":       {"soc trang", "tỉnh sóc trăng"},
	"sơn la":          {"son la", "tỉnh sơn la"},
	"tây ninh":        {"tay ninh", "tỉnh tây ninh"},
	"thái bình":       {"thai binh", "tỉnh thái bình"},
	"thái nguyên":     {"thai nguyen", "tỉnh thái nguyên"},
	"thanh hóa":       {"thanh hoa", "tỉnh thanh hóa"},
	"thừa thiên huế":  {"thua thien hue", "huế", "hue", "tỉnh thừa thiên huế"},
	"tiền giang":      {"tien giang", "tỉnh tiền giang"},
	"trà vinh":        {"tra vinh", "tỉnh trà vinh"},
	"tuyên quang":     {"tuyen quang", "tỉnh tuyên quang"},
	"vĩnh long":       {"vinh long", "tỉnh vĩnh long"},
	"vĩnh phúc":       {"vinh phuc", "tỉnh vĩnh phúc"},
	"yên bái":         {"yen bai", "tỉnh yên bái"},
}

// synonymGroup is a canonical place with all its spellings in normalized form.
type synonymGroup struct {
	canonical string
	phrases   []string
}

// SynonymTable resolves aliases of the same place.
type SynonymTable struct {
	groups []synonymGroup
}

// NewSynonymTable normalizes aliases. Extra entries extend or add groups.
func NewSynonymTable(extra map[string][]string) *SynonymTable {
	merged := make(map[string][]string, len(provinceAliases)+len(extra))
	for k, v := range provinceAliases {
		merged[k] = append(merged[k], v...)
	}
	for k, v := range extra {
		merged[k] = append(merged[k], v...)
	}

	t := &SynonymTable{}
	for canonical, aliases := range merged {
		g := synonymGroup{canonical: Normalize(canonical)}
		seen := map[string]bool{}
		for _, p := range append([]string{canonical}, aliases...) {
			n := Normalize(p)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			g.phrases = append(g.phrases, n)
		}
		t.groups = append(t.groups, g)
	}
	return t
}

// DefaultSynonyms covers the provinces of Vietnam.
var DefaultSynonyms = NewSynonymTable(nil)

// Shared returns the canonical place both normalized texts mention, if any.
func (t *SynonymTable) Shared(a, b string) (string, bool) {
	var best string
	for _, g := range t.groups {
		if g.mentionedIn(a) && g.mentionedIn(b) {
			// Several groups can apply ("hà nam" in "hà nam định"); pick deterministically.
			if best == "" || g.canonical < best {
				best = g.canonical
			}
		}
	}
	return best, best != ""
}

func (g synonymGroup) mentionedIn(text string) bool {
	for _, p := range g.phrases {
		if containsPhrase(text, p) {
			return true
		}
	}
	return false
}
