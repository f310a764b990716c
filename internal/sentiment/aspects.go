package sentiment

import "strings"

// AllowedAspects is the closed vocabulary. Only these keys ever appear in a
// normalized aspect map, no matter what the model emitted.
var AllowedAspects = []string{"Room", "Location", "Price", "Service", "Food", "Facilities"}

type aspectSynonym struct {
	keyword   string
	canonical string
}

// Bilingual keyword -> canonical aspect table. Kept as an ordered slice so
// the substring stage resolves the same way every time.
var aspectSynonyms = []aspectSynonym{
	// Room
	{"room", "Room"}, {"rooms", "Room"}, {"bedroom", "Room"}, {"suite", "Room"},
	{"accommodation", "Room"}, {"bed", "Room"}, {"beds", "Room"}, {"sleep", "Room"},
	{"sleeping", "Room"}, {"cleanliness", "Room"}, {"clean", "Room"}, {"cleaning", "Room"},
	{"noise", "Room"}, {"soundproof", "Room"}, {"space", "Room"}, {"spacious", "Room"},
	{"房间", "Room"}, {"客房", "Room"}, {"卧室", "Room"}, {"床", "Room"},
	{"卫生", "Room"}, {"睡眠", "Room"}, {"隔音", "Room"}, {"空间", "Room"},

	// Location
	{"location", "Location"}, {"position", "Location"}, {"place", "Location"},
	{"area", "Location"}, {"loc", "Location"}, {"neighborhood", "Location"},
	{"accessibility", "Location"}, {"traffic", "Location"}, {"transport", "Location"},
	{"view", "Location"},
	{"位置", "Location"}, {"交通", "Location"}, {"地点", "Location"},
	{"周边", "Location"}, {"景色", "Location"}, {"风景", "Location"},

	// Price
	{"price", "Price"}, {"cost", "Price"}, {"value", "Price"}, {"money", "Price"},
	{"expensive", "Price"}, {"cheap", "Price"}, {"rate", "Price"}, {"rates", "Price"},
	{"booking", "Price"}, {"deposit", "Price"},
	{"价格", "Price"}, {"性价比", "Price"}, {"费用", "Price"}, {"贵", "Price"}, {"便宜", "Price"},

	// Service
	{"service", "Service"}, {"staff", "Service"}, {"services", "Service"},
	{"personnel", "Service"}, {"reception", "Service"}, {"check-in", "Service"},
	{"checkin", "Service"}, {"crew", "Service"}, {"manager", "Service"},
	{"attitude", "Service"}, {"response", "Service"},
	{"服务", "Service"}, {"前台", "Service"}, {"态度", "Service"},
	{"人员", "Service"}, {"管理", "Service"},

	// Food
	{"food", "Food"}, {"breakfast", "Food"}, {"meal", "Food"}, {"meals", "Food"},
	{"dining", "Food"}, {"restaurant", "Food"}, {"drink", "Food"}, {"drinks", "Food"},
	{"catering", "Food"}, {"bar", "Food"}, {"lunch", "Food"}, {"dinner", "Food"},
	{"餐饮", "Food"}, {"早餐", "Food"}, {"吃饭", "Food"}, {"食物", "Food"}, {"餐厅", "Food"},

	// Facilities
	{"facility", "Facilities"}, {"facilities", "Facilities"}, {"amenities", "Facilities"},
	{"equipment", "Facilities"}, {"wifi", "Facilities"}, {"internet", "Facilities"},
	{"pool", "Facilities"}, {"gym", "Facilities"}, {"parking", "Facilities"},
	{"elevator", "Facilities"}, {"lift", "Facilities"}, {"bathroom", "Facilities"},
	{"shower", "Facilities"}, {"toilet", "Facilities"}, {"lobby", "Facilities"},
	{"设施", "Facilities"}, {"设备", "Facilities"}, {"网络", "Facilities"},
	{"泳池", "Facilities"}, {"电梯", "Facilities"}, {"浴室", "Facilities"}, {"停车场", "Facilities"},
}

var aspectSynonymIndex = func() map[string]string {
	m := make(map[string]string, len(aspectSynonyms))
	for _, s := range aspectSynonyms {
		m[s.keyword] = s.canonical
	}
	return m
}()

// MapAspect maps a raw aspect name from the model onto the closed
// vocabulary: exact canonical match, then synonym lookup, then substring
// containment over the synonym keywords. Unmappable names report false and
// are dropped by the caller.
func MapAspect(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}

	for _, allowed := range AllowedAspects {
		if key == strings.ToLower(allowed) {
			return allowed, true
		}
	}

	if canonical, ok := aspectSynonymIndex[key]; ok {
		return canonical, true
	}

	for _, s := range aspectSynonyms {
		if strings.Contains(key, s.keyword) {
			return s.canonical, true
		}
	}
	return "", false
}
