package recognition

import (
	"strings"

	"github.com/bearcats-racing/stockchecker/internal/model"
)

// vocabularies maps raw recognition text onto item categories. The slice
// order is the match order: the first vocabulary containing a keyword found
// in the text wins, so keep this list stable.
var vocabularies = []struct {
	category string
	words    []string
}{
	{model.CategoryElectronics, []string{
		"motor", "controller", "microcontroller", "esc", "pcb", "circuit",
		"sensor", "wire", "connector", "resistor", "capacitor",
	}},
	{model.CategoryMechanical, []string{
		"bolt", "nut", "screw", "bearing", "gear", "wheel", "hub",
		"spring", "bracket", "shaft", "sprocket",
	}},
	{model.CategoryPower, []string{
		"battery", "cell", "charger", "fuse", "relay", "regulator",
		"bms", "contactor",
	}},
	{model.CategoryMaterials, []string{
		"carbon", "fiber", "sheet", "aluminum", "steel", "rod", "tube",
		"filament", "resin",
	}},
	{model.CategoryTools, []string{
		"wrench", "screwdriver", "drill", "solder", "plier", "caliper",
		"crimper", "hex key",
	}},
}

// InferCategory derives a category from raw recognition text by an ordered
// keyword match. No match defaults to "other".
func InferCategory(rawText string) string {
	text := strings.ToLower(rawText)
	for _, vocab := range vocabularies {
		for _, word := range vocab.words {
			if strings.Contains(text, word) {
				return vocab.category
			}
		}
	}
	return model.CategoryOther
}
