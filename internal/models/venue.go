package models

// VenueCodes maps venue names to the two-digit codes the official race-list
// site keys its pages by. All 24 venues.
var VenueCodes = map[string]string{
	"桐生": "01", "戸田": "02", "江戸川": "03", "平和島": "04",
	"多摩川": "05", "浜名湖": "06", "蒲郡": "07", "常滑": "08",
	"津": "09", "三国": "10", "びわこ": "11", "住之江": "12",
	"尼崎": "13", "鳴門": "14", "丸亀": "15", "児島": "16",
	"宮島": "17", "徳山": "18", "下関": "19", "若松": "20",
	"芦屋": "21", "福岡": "22", "唐津": "23", "大村": "24",
}

// VenueCode looks up the site code for a venue name.
func VenueCode(name string) (string, bool) {
	code, ok := VenueCodes[name]
	return code, ok
}
