// Package region holds the static reference catalog of supported Korean
// administrative regions (province → city, with city centroids) and the
// nearest-region search over it.
//
// The catalog is compiled-in reference data. It never changes during a
// process lifetime and needs no synchronization; whether a region currently
// has published trail content is a separate, dynamic concern owned by the
// content layer.
package region

import "github.com/dulegil/region-service/internal/geo"

// Code is an opaque identifier for a province (top level) or a city (second
// level, scoped to exactly one province). Province and city codes are drawn
// from disjoint, fixed enumerations known at build time.
type Code string

// Entry ties one supported city to its parent province and the fixed
// centroid coordinate used as a stand-in for the whole city in
// nearest-neighbor search.
type Entry struct {
	Province Code
	City     Code
	Centroid geo.Coordinate
}

// KoreaBounds is the rectangular envelope approximating South Korea,
// Jeju and Ulleung included. Coordinates outside it are rejected before
// any catalog search.
var KoreaBounds = geo.Bounds{
	MinLat: 33.0,
	MaxLat: 38.65,
	MinLon: 124.6,
	MaxLon: 131.0,
}

type cityDef struct {
	code Code
	name string
	lat  float64
	lon  float64
}

type provinceDef struct {
	code   Code
	name   string
	cities []cityDef
}

// Centroids are city-hall coordinates rounded to four decimals.
// City codes that would collide across provinces (Goseong, Gwangju) carry a
// province prefix; display names stay the bare Korean name.
var provinceDefs = []provinceDef{
	{code: "seoul", name: "서울특별시", cities: []cityDef{
		{code: "jongno", name: "종로구", lat: 37.5730, lon: 126.9794},
		{code: "mapo", name: "마포구", lat: 37.5663, lon: 126.9014},
		{code: "eunpyeong", name: "은평구", lat: 37.6027, lon: 126.9291},
		{code: "gangbuk", name: "강북구", lat: 37.6396, lon: 127.0257},
		{code: "dobong", name: "도봉구", lat: 37.6688, lon: 127.0471},
		{code: "nowon", name: "노원구", lat: 37.6542, lon: 127.0568},
		{code: "gwanak", name: "관악구", lat: 37.4784, lon: 126.9516},
		{code: "seocho", name: "서초구", lat: 37.4837, lon: 127.0324},
	}},
	{code: "busan", name: "부산광역시", cities: []cityDef{
		{code: "haeundae", name: "해운대구", lat: 35.1631, lon: 129.1635},
		{code: "geumjeong", name: "금정구", lat: 35.2430, lon: 129.0922},
		{code: "busanjin", name: "부산진구", lat: 35.1631, lon: 129.0532},
		{code: "saha", name: "사하구", lat: 35.1046, lon: 128.9747},
		{code: "gijang", name: "기장군", lat: 35.2446, lon: 129.2224},
	}},
	{code: "incheon", name: "인천광역시", cities: []cityDef{
		{code: "yeonsu", name: "연수구", lat: 37.4106, lon: 126.6788},
		{code: "gyeyang", name: "계양구", lat: 37.5374, lon: 126.7379},
		{code: "ganghwa", name: "강화군", lat: 37.7464, lon: 126.4880},
		{code: "ongjin", name: "옹진군", lat: 37.4466, lon: 126.6366},
	}},
	{code: "daegu", name: "대구광역시", cities: []cityDef{
		{code: "suseong", name: "수성구", lat: 35.8582, lon: 128.6300},
		{code: "dalseo", name: "달서구", lat: 35.8299, lon: 128.5329},
		{code: "dalseong", name: "달성군", lat: 35.7746, lon: 128.4314},
	}},
	{code: "daejeon", name: "대전광역시", cities: []cityDef{
		{code: "yuseong", name: "유성구", lat: 36.3620, lon: 127.3568},
		{code: "daejeon-dong", name: "동구", lat: 36.3120, lon: 127.4548},
		{code: "daejeon-seo", name: "서구", lat: 36.3553, lon: 127.3838},
	}},
	{code: "gwangju", name: "광주광역시", cities: []cityDef{
		{code: "gwangju-buk", name: "북구", lat: 35.1740, lon: 126.9120},
		{code: "gwangju-dong", name: "동구", lat: 35.1460, lon: 126.9230},
		{code: "gwangju-nam", name: "남구", lat: 35.1330, lon: 126.9025},
	}},
	{code: "ulsan", name: "울산광역시", cities: []cityDef{
		{code: "ulsan-dong", name: "동구", lat: 35.5050, lon: 129.4166},
		{code: "ulsan-buk", name: "북구", lat: 35.5827, lon: 129.3613},
		{code: "ulju", name: "울주군", lat: 35.5622, lon: 129.1243},
	}},
	{code: "sejong", name: "세종특별자치시", cities: []cityDef{
		{code: "sejong-si", name: "세종시", lat: 36.4800, lon: 127.2890},
	}},
	{code: "gyeonggi", name: "경기도", cities: []cityDef{
		{code: "suwon", name: "수원시", lat: 37.2636, lon: 127.0286},
		{code: "seongnam", name: "성남시", lat: 37.4449, lon: 127.1389},
		{code: "goyang", name: "고양시", lat: 37.6584, lon: 126.8320},
		{code: "yongin", name: "용인시", lat: 37.2411, lon: 127.1776},
		{code: "bucheon", name: "부천시", lat: 37.5034, lon: 126.7660},
		{code: "ansan", name: "안산시", lat: 37.3219, lon: 126.8309},
		{code: "anyang", name: "안양시", lat: 37.3943, lon: 126.9568},
		{code: "namyangju", name: "남양주시", lat: 37.6360, lon: 127.2165},
		{code: "hwaseong", name: "화성시", lat: 37.1996, lon: 126.8312},
		{code: "pyeongtaek", name: "평택시", lat: 36.9921, lon: 127.1127},
		{code: "uijeongbu", name: "의정부시", lat: 37.7381, lon: 127.0337},
		{code: "paju", name: "파주시", lat: 37.7600, lon: 126.7800},
		{code: "gimpo", name: "김포시", lat: 37.6150, lon: 126.7158},
		{code: "gwangmyeong", name: "광명시", lat: 37.4786, lon: 126.8644},
		{code: "gyeonggi-gwangju", name: "광주시", lat: 37.4295, lon: 127.2553},
		{code: "gunpo", name: "군포시", lat: 37.3617, lon: 126.9350},
		{code: "icheon", name: "이천시", lat: 37.2720, lon: 127.4350},
		{code: "yangju", name: "양주시", lat: 37.7854, lon: 127.0458},
		{code: "osan", name: "오산시", lat: 37.1499, lon: 127.0771},
		{code: "guri", name: "구리시", lat: 37.5943, lon: 127.1296},
		{code: "anseong", name: "안성시", lat: 37.0078, lon: 127.2797},
		{code: "pocheon", name: "포천시", lat: 37.8950, lon: 127.2003},
		{code: "hanam", name: "하남시", lat: 37.5393, lon: 127.2148},
		{code: "yeoju", name: "여주시", lat: 37.2982, lon: 127.6370},
		{code: "dongducheon", name: "동두천시", lat: 37.9035, lon: 127.0605},
		{code: "gapyeong", name: "가평군", lat: 37.8315, lon: 127.5105},
		{code: "yangpyeong", name: "양평군", lat: 37.4917, lon: 127.4876},
		{code: "yeoncheon", name: "연천군", lat: 38.0966, lon: 127.0750},
	}},
	{code: "gangwon", name: "강원특별자치도", cities: []cityDef{
		{code: "chuncheon", name: "춘천시", lat: 37.8813, lon: 127.7298},
		{code: "wonju", name: "원주시", lat: 37.3422, lon: 127.9202},
		{code: "gangneung", name: "강릉시", lat: 37.7519, lon: 128.8761},
		{code: "donghae", name: "동해시", lat: 37.5249, lon: 129.1143},
		{code: "sokcho", name: "속초시", lat: 38.2070, lon: 128.5918},
		{code: "samcheok", name: "삼척시", lat: 37.4499, lon: 129.1651},
		{code: "taebaek", name: "태백시", lat: 37.1640, lon: 128.9856},
		{code: "hongcheon", name: "홍천군", lat: 37.6971, lon: 127.8888},
		{code: "hoengseong", name: "횡성군", lat: 37.4915, lon: 127.9850},
		{code: "yeongwol", name: "영월군", lat: 37.1836, lon: 128.4617},
		{code: "pyeongchang", name: "평창군", lat: 37.3705, lon: 128.3903},
		{code: "jeongseon", name: "정선군", lat: 37.3806, lon: 128.6608},
		{code: "cheorwon", name: "철원군", lat: 38.1468, lon: 127.3132},
		{code: "hwacheon", name: "화천군", lat: 38.1063, lon: 127.7082},
		{code: "yanggu", name: "양구군", lat: 38.1100, lon: 127.9899},
		{code: "inje", name: "인제군", lat: 38.0695, lon: 128.1707},
		{code: "gangwon-goseong", name: "고성군", lat: 38.3798, lon: 128.4676},
		{code: "yangyang", name: "양양군", lat: 38.0754, lon: 128.6190},
	}},
	{code: "chungbuk", name: "충청북도", cities: []cityDef{
		{code: "cheongju", name: "청주시", lat: 36.6424, lon: 127.4890},
		{code: "chungju", name: "충주시", lat: 36.9910, lon: 127.9259},
		{code: "jecheon", name: "제천시", lat: 37.1326, lon: 128.1910},
		{code: "boeun", name: "보은군", lat: 36.4894, lon: 127.7294},
		{code: "okcheon", name: "옥천군", lat: 36.3063, lon: 127.5714},
		{code: "yeongdong", name: "영동군", lat: 36.1750, lon: 127.7765},
		{code: "jincheon", name: "진천군", lat: 36.8549, lon: 127.4357},
		{code: "goesan", name: "괴산군", lat: 36.8153, lon: 127.7867},
		{code: "eumseong", name: "음성군", lat: 36.9402, lon: 127.6906},
		{code: "danyang", name: "단양군", lat: 36.9845, lon: 128.3655},
	}},
	{code: "chungnam", name: "충청남도", cities: []cityDef{
		{code: "cheonan", name: "천안시", lat: 36.8151, lon: 127.1139},
		{code: "gongju", name: "공주시", lat: 36.4465, lon: 127.1190},
		{code: "boryeong", name: "보령시", lat: 36.3334, lon: 126.6129},
		{code: "asan", name: "아산시", lat: 36.7898, lon: 127.0019},
		{code: "seosan", name: "서산시", lat: 36.7848, lon: 126.4503},
		{code: "nonsan", name: "논산시", lat: 36.1872, lon: 127.0986},
		{code: "dangjin", name: "당진시", lat: 36.8930, lon: 126.6280},
		{code: "geumsan", name: "금산군", lat: 36.1088, lon: 127.4881},
		{code: "buyeo", name: "부여군", lat: 36.2756, lon: 126.9098},
		{code: "seocheon", name: "서천군", lat: 36.0803, lon: 126.6919},
		{code: "cheongyang", name: "청양군", lat: 36.4593, lon: 126.8022},
		{code: "hongseong", name: "홍성군", lat: 36.6012, lon: 126.6608},
		{code: "yesan", name: "예산군", lat: 36.6826, lon: 126.8444},
		{code: "taean", name: "태안군", lat: 36.7456, lon: 126.2978},
	}},
	{code: "jeonbuk", name: "전북특별자치도", cities: []cityDef{
		{code: "jeonju", name: "전주시", lat: 35.8242, lon: 127.1480},
		{code: "gunsan", name: "군산시", lat: 35.9676, lon: 126.7369},
		{code: "iksan", name: "익산시", lat: 35.9483, lon: 126.9578},
		{code: "jeongeup", name: "정읍시", lat: 35.5699, lon: 126.8559},
		{code: "namwon", name: "남원시", lat: 35.4164, lon: 127.3905},
		{code: "gimje", name: "김제시", lat: 35.8036, lon: 126.8809},
		{code: "wanju", name: "완주군", lat: 35.9049, lon: 127.1620},
		{code: "jinan", name: "진안군", lat: 35.7917, lon: 127.4248},
		{code: "muju", name: "무주군", lat: 36.0068, lon: 127.6608},
		{code: "jangsu", name: "장수군", lat: 35.6474, lon: 127.5211},
		{code: "imsil", name: "임실군", lat: 35.6178, lon: 127.2891},
		{code: "sunchang", name: "순창군", lat: 35.3744, lon: 127.1376},
		{code: "gochang", name: "고창군", lat: 35.4358, lon: 126.7022},
		{code: "buan", name: "부안군", lat: 35.7318, lon: 126.7330},
	}},
	{code: "jeonnam", name: "전라남도", cities: []cityDef{
		{code: "mokpo", name: "목포시", lat: 34.8118, lon: 126.3922},
		{code: "yeosu", name: "여수시", lat: 34.7604, lon: 127.6622},
		{code: "suncheon", name: "순천시", lat: 34.9507, lon: 127.4872},
		{code: "naju", name: "나주시", lat: 35.0160, lon: 126.7108},
		{code: "gwangyang", name: "광양시", lat: 34.9407, lon: 127.6959},
		{code: "damyang", name: "담양군", lat: 35.3214, lon: 126.9880},
		{code: "gokseong", name: "곡성군", lat: 35.2820, lon: 127.2921},
		{code: "gurye", name: "구례군", lat: 35.2026, lon: 127.4627},
		{code: "goheung", name: "고흥군", lat: 34.6111, lon: 127.2850},
		{code: "boseong", name: "보성군", lat: 34.7714, lon: 127.0800},
		{code: "hwasun", name: "화순군", lat: 35.0645, lon: 126.9864},
		{code: "jangheung", name: "장흥군", lat: 34.6816, lon: 126.9070},
		{code: "gangjin", name: "강진군", lat: 34.6420, lon: 126.7672},
		{code: "haenam", name: "해남군", lat: 34.5735, lon: 126.5993},
		{code: "yeongam", name: "영암군", lat: 34.8001, lon: 126.6967},
		{code: "muan", name: "무안군", lat: 34.9904, lon: 126.4817},
		{code: "hampyeong", name: "함평군", lat: 35.0660, lon: 126.5166},
		{code: "yeonggwang", name: "영광군", lat: 35.2772, lon: 126.5120},
		{code: "jangseong", name: "장성군", lat: 35.3018, lon: 126.7848},
		{code: "wando", name: "완도군", lat: 34.3110, lon: 126.7551},
		{code: "jindo", name: "진도군", lat: 34.4868, lon: 126.2635},
		{code: "sinan", name: "신안군", lat: 34.8336, lon: 126.3514},
	}},
	{code: "gyeongbuk", name: "경상북도", cities: []cityDef{
		{code: "pohang", name: "포항시", lat: 36.0190, lon: 129.3435},
		{code: "gyeongju", name: "경주시", lat: 35.8562, lon: 129.2247},
		{code: "gimcheon", name: "김천시", lat: 36.1399, lon: 128.1136},
		{code: "andong", name: "안동시", lat: 36.5684, lon: 128.7294},
		{code: "gumi", name: "구미시", lat: 36.1195, lon: 128.3446},
		{code: "yeongju", name: "영주시", lat: 36.8057, lon: 128.6240},
		{code: "yeongcheon", name: "영천시", lat: 35.9733, lon: 128.9386},
		{code: "sangju", name: "상주시", lat: 36.4109, lon: 128.1590},
		{code: "mungyeong", name: "문경시", lat: 36.5866, lon: 128.1867},
		{code: "gyeongsan", name: "경산시", lat: 35.8251, lon: 128.7414},
		{code: "uiseong", name: "의성군", lat: 36.3527, lon: 128.6971},
		{code: "cheongsong", name: "청송군", lat: 36.4363, lon: 129.0572},
		{code: "yeongyang", name: "영양군", lat: 36.6667, lon: 129.1125},
		{code: "yeongdeok", name: "영덕군", lat: 36.4150, lon: 129.3659},
		{code: "cheongdo", name: "청도군", lat: 35.6474, lon: 128.7340},
		{code: "goryeong", name: "고령군", lat: 35.7261, lon: 128.2629},
		{code: "seongju", name: "성주군", lat: 35.9192, lon: 128.2829},
		{code: "chilgok", name: "칠곡군", lat: 35.9956, lon: 128.4017},
		{code: "yecheon", name: "예천군", lat: 36.6580, lon: 128.4528},
		{code: "bonghwa", name: "봉화군", lat: 36.8932, lon: 128.7325},
		{code: "uljin", name: "울진군", lat: 36.9930, lon: 129.4006},
		{code: "ulleung", name: "울릉군", lat: 37.4844, lon: 130.9058},
	}},
	{code: "gyeongnam", name: "경상남도", cities: []cityDef{
		{code: "changwon", name: "창원시", lat: 35.2281, lon: 128.6811},
		{code: "jinju", name: "진주시", lat: 35.1800, lon: 128.1076},
		{code: "tongyeong", name: "통영시", lat: 34.8544, lon: 128.4332},
		{code: "sacheon", name: "사천시", lat: 35.0038, lon: 128.0641},
		{code: "gimhae", name: "김해시", lat: 35.2285, lon: 128.8894},
		{code: "miryang", name: "밀양시", lat: 35.5038, lon: 128.7467},
		{code: "geoje", name: "거제시", lat: 34.8806, lon: 128.6211},
		{code: "yangsan", name: "양산시", lat: 35.3350, lon: 129.0372},
		{code: "uiryeong", name: "의령군", lat: 35.3222, lon: 128.2618},
		{code: "haman", name: "함안군", lat: 35.2725, lon: 128.4065},
		{code: "changnyeong", name: "창녕군", lat: 35.5444, lon: 128.4923},
		{code: "gyeongnam-goseong", name: "고성군", lat: 34.9730, lon: 128.3222},
		{code: "namhae", name: "남해군", lat: 34.8376, lon: 127.8924},
		{code: "hadong", name: "하동군", lat: 35.0674, lon: 127.7513},
		{code: "sancheong", name: "산청군", lat: 35.4155, lon: 127.8734},
		{code: "hamyang", name: "함양군", lat: 35.5203, lon: 127.7252},
		{code: "geochang", name: "거창군", lat: 35.6867, lon: 127.9095},
		{code: "hapcheon", name: "합천군", lat: 35.5666, lon: 128.1659},
	}},
	{code: "jeju", name: "제주특별자치도", cities: []cityDef{
		{code: "jeju-si", name: "제주시", lat: 33.4996, lon: 126.5312},
		{code: "seogwipo", name: "서귀포시", lat: 33.2541, lon: 126.5601},
	}},
}

var (
	allEntries        []Entry
	entriesByProvince map[Code][]Entry
	provinceOrder     []Code
	provinceNames     map[Code]string
	cityNames         map[Code]string
)

func init() {
	entriesByProvince = make(map[Code][]Entry, len(provinceDefs))
	provinceNames = make(map[Code]string, len(provinceDefs))
	cityNames = make(map[Code]string)

	for _, p := range provinceDefs {
		provinceOrder = append(provinceOrder, p.code)
		provinceNames[p.code] = p.name
		for _, c := range p.cities {
			e := Entry{
				Province: p.code,
				City:     c.code,
				Centroid: geo.Coordinate{Lat: c.lat, Lon: c.lon},
			}
			allEntries = append(allEntries, e)
			entriesByProvince[p.code] = append(entriesByProvince[p.code], e)
			cityNames[c.code] = c.name
		}
	}
}

// All returns every catalog entry in catalog order. The returned slice is
// shared reference data and must not be modified.
func All() []Entry {
	return allEntries
}

// ForProvince returns the entries for one province, or nil for an unknown
// province code.
func ForProvince(province Code) []Entry {
	return entriesByProvince[province]
}

// Provinces returns all province codes in catalog (display) order.
func Provinces() []Code {
	return provinceOrder
}

// ProvinceName returns the display name for a province code. Unknown codes
// come back as the code itself so display lookups never fail.
func ProvinceName(code Code) string {
	if name, ok := provinceNames[code]; ok {
		return name
	}
	return string(code)
}

// CityName returns the display name for a city code, falling back to the
// code itself for unknown codes.
func CityName(code Code) string {
	if name, ok := cityNames[code]; ok {
		return name
	}
	return string(code)
}
