package intent

// Keyword tables for intent detection. Vietnamese terms are listed in both
// accented and unaccented spellings because customers type both. Category
// entries are ordered by priority: specific phone terms come before generic
// mobile words, and accessories last so "ốp lưng iphone" resolves to the
// accessory, not the phone, only when no stronger category term appears
// earlier in the list.

type categoryEntry struct {
	category Category
	keywords []string
}

var categoryKeywords = []categoryEntry{
	{CategoryPhone, []string{
		"điện thoại", "dien thoai", "smartphone", "iphone", "galaxy s",
		"galaxy z", "galaxy a", "redmi note", "phone",
	}},
	{CategoryLaptop, []string{
		"laptop", "máy tính xách tay", "may tinh xach tay", "macbook",
		"notebook", "ultrabook",
	}},
	{CategoryTablet, []string{
		"máy tính bảng", "may tinh bang", "tablet", "ipad", "galaxy tab",
	}},
	{CategoryWatch, []string{
		"đồng hồ thông minh", "dong ho thong minh", "smartwatch",
		"apple watch", "galaxy watch", "đồng hồ", "dong ho",
	}},
	{CategoryAccessory, []string{
		"phụ kiện", "phu kien", "tai nghe", "sạc", "cáp", "ốp lưng",
		"op lung", "chuột", "bàn phím", "ban phim", "headphone", "earbuds",
		"charger", "mouse", "keyboard",
	}},
}

type purposeEntry struct {
	purpose  Purpose
	keywords []string
}

var purposeKeywords = []purposeEntry{
	{PurposeGaming, []string{
		"gaming", "chơi game", "choi game", "game thủ", "game thu",
		"chơi liên quân", "fps cao",
	}},
	{PurposeGraphics, []string{
		"đồ họa", "do hoa", "render", "dựng phim", "dung phim",
		"chỉnh sửa video", "edit video", "photoshop", "thiết kế",
		"thiet ke",
	}},
	{PurposeOffice, []string{
		"văn phòng", "van phong", "làm việc", "lam viec", "excel",
		"word", "office",
	}},
	{PurposeStudy, []string{
		"học tập", "hoc tap", "sinh viên học", "học online", "hoc online",
		"đi học", "di hoc",
	}},
}

// Gaming hardware lines. A query mentioning one of these implies a gaming
// purpose even without the word "gaming", and the product builder also
// matches these against product names when filtering gaming laptops.
var GamingSeriesKeywords = []string{
	"rog", "tuf", "nitro", "predator", "legion", "katana", "loq",
	"victus", "omen", "gaming",
}

type brandEntry struct {
	brand    string
	keywords []string
}

var brandKeywords = []brandEntry{
	{"apple", []string{"apple", "iphone", "macbook", "ipad", "airpods"}},
	{"samsung", []string{"samsung", "galaxy"}},
	{"xiaomi", []string{"xiaomi", "redmi", "poco"}},
	{"oppo", []string{"oppo", "reno"}},
	{"asus", []string{"asus", "rog", "tuf", "zenbook", "vivobook"}},
	{"acer", []string{"acer", "nitro", "predator", "aspire", "swift"}},
	{"lenovo", []string{"lenovo", "legion", "thinkpad", "ideapad", "loq"}},
	{"dell", []string{"dell", "inspiron", "latitude", "xps", "alienware"}},
	{"hp", []string{"hp ", "pavilion", "victus", "omen", "elitebook"}},
	{"msi", []string{"msi", "katana", "cyborg"}},
}

// comparisonKeywords mark queries weighing two or more products against each
// other. Connectives are padded with spaces so "hay" inside another word does
// not trigger.
var comparisonKeywords = []string{
	"so sánh", "so sanh", "compare", " vs ", " vs.", " versus ",
	" hay ", " hoặc ", " hoac ", "nên mua", "nen mua", "cái nào",
	"cai nao", "con nào", "con nao", "tốt hơn", "tot hon",
}

// fullSpecKeywords mark queries asking for the complete specification sheet
// rather than a shopping summary.
var fullSpecKeywords = []string{
	"thông số", "thong so", "cấu hình", "cau hinh", "chi tiết kỹ thuật",
	"chi tiet ky thuat", "specification", "specs", "full spec",
	"chi tiết sản phẩm", "chi tiet san pham",
}

var lowTierKeywords = []string{
	"giá rẻ", "gia re", "rẻ nhất", "re nhat", "rẻ", " re ", "cheap",
	"budget", "bình dân", "binh dan", "tiết kiệm", "tiet kiem",
	"giá mềm", "gia mem", "học sinh sinh viên",
}

var highTierKeywords = []string{
	"cao cấp", "cao cap", "premium", "flagship", "đắt nhất", "dat nhat",
	"xịn nhất", "xin nhat", "high-end", "high end", "sang trọng",
	"sang trong", "đầu bảng", "dau bang",
}

var midTierKeywords = []string{
	"tầm trung", "tam trung", "mid-range", "midrange", "trung cấp",
	"trung cap",
}
