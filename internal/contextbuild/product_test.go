package contextbuild

import (
	"strings"
	"testing"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/intent"
)

func laptopCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Laptop Acer Aspire 5", Price: 12_990_000, Category: "Laptop", Brand: "Acer", Stock: 20, Active: true},
		{ID: 2, Name: "Laptop Asus Vivobook 15", Price: 9_490_000, Category: "Laptop", Brand: "Asus", Stock: 35, Active: true},
		{ID: 3, Name: "Laptop Lenovo IdeaPad Slim 3", Price: 8_990_000, Category: "Laptop", Brand: "Lenovo", Stock: 15, Active: true},
		{ID: 4, Name: "Laptop Dell XPS 13", Price: 42_990_000, Category: "Laptop", Brand: "Dell", Stock: 5, Active: true},
		{ID: 5, Name: "Laptop Asus ROG Strix G16", Price: 35_990_000, Category: "Laptop", Brand: "Asus", Stock: 8, Active: true},
		{ID: 6, Name: "Laptop HP Pavilion cũ", Price: 6_990_000, Category: "Laptop", Brand: "HP", Stock: 0, Active: false},
		{ID: 7, Name: "iPhone 15 Pro Max", Price: 29_990_000, Category: "Điện thoại", Brand: "Apple", Stock: 40, Active: true},
		{ID: 8, Name: "Samsung Galaxy S24", Price: 22_990_000, Category: "Điện thoại", Brand: "Samsung", Stock: 25, Active: true},
	}
}

func TestProductBuilderExcludesInactive(t *testing.T) {
	t.Parallel()

	b := NewProductBuilder(0)
	queries := []string{
		"laptop giá rẻ",
		"laptop hp",
		"so sánh laptop",
		"cho xem cấu hình laptop",
	}
	for _, q := range queries {
		out := b.Build(intent.Analyze(q), laptopCatalog())
		if strings.Contains(out, "HP Pavilion cũ") {
			t.Errorf("query %q: inactive product rendered:\n%s", q, out)
		}
	}
}

func TestProductBuilderAllInactive(t *testing.T) {
	t.Parallel()

	all := []catalog.Product{
		{ID: 1, Name: "Laptop cũ", Price: 5_000_000, Category: "Laptop", Active: false},
	}
	if out := NewProductBuilder(0).Build(intent.Intent{}, all); out != "" {
		t.Errorf("all-inactive catalog rendered output:\n%s", out)
	}
}

func TestProductBuilderBudgetLaptopScenario(t *testing.T) {
	t.Parallel()

	it := intent.Analyze("laptop giá rẻ dưới 10 triệu")
	out := NewProductBuilder(0).Build(it, laptopCatalog())

	if out == "" {
		t.Fatal("empty output for non-empty catalog")
	}
	for _, over := range []string{"Acer Aspire 5", "Dell XPS 13", "ROG Strix"} {
		if listingContains(out, over) {
			t.Errorf("product over 10M rendered in listing: %s", over)
		}
	}
	// Ascending by price: Lenovo (8.99M) before Asus (9.49M).
	lenovo := strings.Index(out, "Lenovo IdeaPad Slim 3")
	asus := strings.Index(out, "Asus Vivobook 15")
	if lenovo == -1 || asus == -1 {
		t.Fatalf("expected both budget laptops in output:\n%s", out)
	}
	if lenovo > asus {
		t.Errorf("low tier not sorted ascending by price:\n%s", out)
	}
}

// listingContains checks the detail listing only, skipping the summary header
// where cheapest/priciest anchors legitimately name filtered-out products.
func listingContains(out, name string) bool {
	i := strings.Index(out, "DANH SÁCH SẢN PHẨM:")
	if i == -1 {
		return false
	}
	return strings.Contains(out[i:], name)
}

func TestProductBuilderHighTierSortsDescending(t *testing.T) {
	t.Parallel()

	out := NewProductBuilder(0).Build(intent.Analyze("laptop cao cấp"), laptopCatalog())
	dell := strings.Index(out, "Dell XPS 13")
	lenovo := strings.Index(out, "Lenovo IdeaPad Slim 3")
	if dell == -1 || lenovo == -1 {
		t.Fatalf("expected laptops in output:\n%s", out)
	}
	if dell > lenovo {
		t.Errorf("high tier not sorted descending by price:\n%s", out)
	}
}

func TestProductBuilderComparisonSkipsBrandFilter(t *testing.T) {
	t.Parallel()

	it := intent.Analyze("so sánh laptop asus hay dell")
	if !it.IsComparison || it.Brand == "" {
		t.Fatalf("precondition: want comparison with brand, got %+v", it)
	}

	out := NewProductBuilder(0).Build(it, laptopCatalog())
	if !listingContains(out, "Asus Vivobook 15") || !listingContains(out, "Dell XPS 13") {
		t.Errorf("comparison query narrowed to one brand:\n%s", out)
	}
}

func TestProductBuilderBrandFilter(t *testing.T) {
	t.Parallel()

	out := NewProductBuilder(0).Build(intent.Analyze("laptop dell"), laptopCatalog())
	if !listingContains(out, "Dell XPS 13") {
		t.Fatalf("brand match missing:\n%s", out)
	}
	if listingContains(out, "Acer Aspire 5") {
		t.Errorf("other brand rendered despite brand filter:\n%s", out)
	}
}

func TestProductBuilderBrandFilterFallsBack(t *testing.T) {
	t.Parallel()

	// No MSI products in the catalog: the filter must fall back to the full
	// set instead of rendering nothing.
	out := NewProductBuilder(0).Build(intent.Analyze("laptop msi"), laptopCatalog())
	if out == "" {
		t.Fatal("empty output after unmatched brand filter")
	}
	if !listingContains(out, "Acer Aspire 5") {
		t.Errorf("fallback set missing expected product:\n%s", out)
	}
}

func TestProductBuilderGamingSubFilter(t *testing.T) {
	t.Parallel()

	out := NewProductBuilder(0).Build(intent.Analyze("laptop chơi game"), laptopCatalog())
	if !listingContains(out, "ROG Strix") {
		t.Fatalf("gaming laptop missing:\n%s", out)
	}
	if listingContains(out, "IdeaPad Slim 3") {
		t.Errorf("non-gaming laptop rendered for gaming query:\n%s", out)
	}
	// Other categories are unaffected by the laptop sub-filter.
	if !listingContains(out, "iPhone 15 Pro Max") {
		t.Errorf("other category dropped by gaming sub-filter:\n%s", out)
	}
}

func TestProductBuilderGamingSubFilterFallsBack(t *testing.T) {
	t.Parallel()

	all := []catalog.Product{
		{ID: 1, Name: "Laptop Acer Aspire 5", Price: 12_990_000, Category: "Laptop", Brand: "Acer", Stock: 20, Active: true},
		{ID: 2, Name: "Laptop Asus Vivobook 15", Price: 9_490_000, Category: "Laptop", Brand: "Asus", Stock: 35, Active: true},
	}
	out := NewProductBuilder(0).Build(intent.Analyze("laptop chơi game"), all)
	if !listingContains(out, "Acer Aspire 5") || !listingContains(out, "Asus Vivobook 15") {
		t.Errorf("gaming sub-filter with zero matches must keep the category set:\n%s", out)
	}
}

func TestProductBuilderDefaultRankingByStock(t *testing.T) {
	t.Parallel()

	out := NewProductBuilder(0).Build(intent.Intent{}, laptopCatalog())
	asus := strings.Index(out, "Asus Vivobook 15") // stock 35
	dell := strings.Index(out, "Dell XPS 13")      // stock 5
	if asus == -1 || dell == -1 {
		t.Fatalf("expected laptops in output:\n%s", out)
	}
	if asus > dell {
		t.Errorf("default ranking not descending by stock:\n%s", out)
	}
}

func TestProductBuilderTargetCategoryFirst(t *testing.T) {
	t.Parallel()

	out := NewProductBuilder(0).Build(intent.Analyze("điện thoại pin trâu"), laptopCatalog())
	i := strings.Index(out, "DANH SÁCH SẢN PHẨM:")
	if i == -1 {
		t.Fatalf("missing listing header:\n%s", out)
	}
	listing := out[i:]
	phones := strings.Index(listing, "[Điện thoại]")
	laptops := strings.Index(listing, "[Laptop]")
	if phones == -1 || laptops == -1 {
		t.Fatalf("expected both category sections:\n%s", out)
	}
	if phones > laptops {
		t.Errorf("target category not emitted first:\n%s", out)
	}
}

func TestProductBuilderSummaryStats(t *testing.T) {
	t.Parallel()

	out := NewProductBuilder(0).Build(intent.Intent{}, laptopCatalog())
	if !strings.Contains(out, "TỔNG QUAN DANH MỤC SẢN PHẨM:") {
		t.Fatalf("missing summary header:\n%s", out)
	}
	// Cheapest active laptop is the Lenovo at 8.99M.
	if !strings.Contains(out, "8.990.000đ") {
		t.Errorf("summary missing min price:\n%s", out)
	}
	if !strings.Contains(out, "42.990.000đ") {
		t.Errorf("summary missing max price:\n%s", out)
	}
}

func TestProductBuilderFullSpecsMode(t *testing.T) {
	t.Parallel()

	all := []catalog.Product{{
		ID: 1, Name: "Laptop Acer Aspire 5", Price: 12_990_000, Category: "Laptop",
		Brand: "Acer", Stock: 20, Active: true,
		Document: "Tên: Laptop Acer Aspire 5\nCPU: Ryzen 5 7535HS\nRAM: 16GB\nSSD: 512GB",
	}}
	out := NewProductBuilder(0).Build(intent.Analyze("cấu hình laptop acer"), all)
	if !strings.Contains(out, "CPU: Ryzen 5 7535HS") {
		t.Errorf("full-specs mode did not emit the stored document:\n%s", out)
	}
}

func TestProductBuilderRespectsCharBudget(t *testing.T) {
	t.Parallel()

	const budget = 600
	out := NewProductBuilder(budget).Build(intent.Intent{}, laptopCatalog())
	if len(out) > budget+len(ProductTruncatedMarker)+1 {
		t.Errorf("block length %d exceeds budget %d", len(out), budget)
	}
	if !strings.Contains(out, ProductTruncatedMarker) {
		t.Errorf("tight budget did not produce truncation marker:\n%s", out)
	}
}

func TestFormatVND(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0đ"},
		{999, "999đ"},
		{1_000, "1.000đ"},
		{10_000_000, "10.000.000đ"},
		{29_990_000, "29.990.000đ"},
	}
	for _, tt := range tests {
		if got := formatVND(tt.in); got != tt.want {
			t.Errorf("formatVND(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
