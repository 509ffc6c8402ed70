package detect

import "image/color"

// Waste categories the overlay and announcer understand. The detection
// model reports organic/recyclable directly; general object-detection
// labels are mapped through CategoryFor.
const (
	CategoryOrganic    = "organic"
	CategoryRecyclable = "recyclable"
	CategoryPlastic    = "plastic"
	CategoryPaper      = "paper"
	CategoryMetal      = "metal"
	CategoryGlass      = "glass"
	CategoryCardboard  = "cardboard"
	CategoryTrash      = "trash"
)

// categoryColors maps each waste category to its display color.
var categoryColors = map[string]color.RGBA{
	CategoryPlastic:    {R: 0, G: 255, B: 0, A: 255},     // green
	CategoryPaper:      {R: 0, G: 0, B: 255, A: 255},     // blue
	CategoryMetal:      {R: 255, G: 255, B: 0, A: 255},   // yellow
	CategoryGlass:      {R: 255, G: 0, B: 255, A: 255},   // magenta
	CategoryCardboard:  {R: 0, G: 165, B: 255, A: 255},   // orange
	CategoryTrash:      {R: 255, G: 0, B: 0, A: 255},     // red
	CategoryOrganic:    {R: 0, G: 128, B: 0, A: 255},     // dark green
	CategoryRecyclable: {R: 0, G: 200, B: 200, A: 255},   // teal
	"bottle":           {R: 128, G: 0, B: 128, A: 255},   // purple
	"can":              {R: 192, G: 192, B: 192, A: 255}, // silver
	"bag":              {R: 128, G: 128, B: 0, A: 255},   // olive
}

// objectCategories maps general object-detection labels to waste
// categories. Unknown labels fall back to trash.
var objectCategories = map[string]string{
	"bottle":     CategoryPlastic,
	"cup":        CategoryPlastic,
	"fork":       CategoryPlastic,
	"knife":      CategoryPlastic,
	"spoon":      CategoryPlastic,
	"bowl":       CategoryPlastic,
	"toothbrush": CategoryPlastic,
	"banana":     CategoryOrganic,
	"apple":      CategoryOrganic,
	"orange":     CategoryOrganic,
	"carrot":     CategoryOrganic,
	"broccoli":   CategoryOrganic,
	"pizza":      CategoryOrganic,
	"donut":      CategoryOrganic,
	"cake":       CategoryOrganic,
	"sandwich":   CategoryOrganic,
	"hot dog":    CategoryOrganic,
	"food":       CategoryOrganic,
	"book":       CategoryPaper,
	"laptop":     CategoryMetal,
	"keyboard":   CategoryMetal,
	"mouse":      CategoryMetal,
	"cell phone": CategoryMetal,
	"tv":         CategoryMetal,
	"scissors":   CategoryMetal,
	"hair drier": CategoryMetal,
	"teddy bear": CategoryTrash,
}

// CategoryFor maps a raw detection label to a waste category.
func CategoryFor(label string) string {
	if cat, ok := objectCategories[label]; ok {
		return cat
	}
	switch label {
	case CategoryOrganic, CategoryRecyclable, CategoryPlastic, CategoryPaper,
		CategoryMetal, CategoryGlass, CategoryCardboard:
		return label
	}
	return CategoryTrash
}

// ColorFor returns the display color for a category, white for unknown.
func ColorFor(category string) color.RGBA {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// Title uppercases the first letter of a label or category for display
// and speech.
func Title(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// Recyclable reports whether a category is announced as recyclable waste.
func Recyclable(category string) bool {
	switch category {
	case CategoryPlastic, CategoryPaper, CategoryMetal, CategoryGlass,
		CategoryCardboard, CategoryRecyclable:
		return true
	}
	return false
}

// Compostable reports whether a category is announced as compostable waste.
func Compostable(category string) bool {
	return category == CategoryOrganic || category == "food"
}
