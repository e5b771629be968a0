package engine

import "strings"

// groundingBrandMarkers is the fixed list of brand names the grounding check
// looks for. A brand that appears in the generated answer but nowhere in the
// supplied context or the user's own message suggests the model reached
// outside the provided data. This is a best-effort heuristic, not a general
// hallucination detector — it only catches the brand-name failure mode.
var groundingBrandMarkers = []string{
	"iphone",
	"apple",
	"samsung",
	"galaxy",
	"xiaomi",
	"redmi",
	"oppo",
	"vivo",
	"realme",
	"nokia",
	"huawei",
	"asus",
	"acer",
	"lenovo",
	"dell",
	"msi",
	"macbook",
}

// ungroundedBrands returns the brand markers present in generated but absent
// from both the composed context and the user's query. An empty result means
// the answer passed the check.
func ungroundedBrands(generated, contextText, userQuery string) []string {
	gen := strings.ToLower(generated)
	known := strings.ToLower(contextText) + "\n" + strings.ToLower(userQuery)

	var out []string
	for _, brand := range groundingBrandMarkers {
		if strings.Contains(gen, brand) && !strings.Contains(known, brand) {
			out = append(out, brand)
		}
	}
	return out
}
