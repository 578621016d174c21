package pokemon

import (
	"strings"
)

// typeNames maps upstream (English) type names to the Spanish names served
// to the frontend.
var typeNames = map[string]string{
	"normal":   "normal",
	"fire":     "fuego",
	"water":    "agua",
	"grass":    "planta",
	"electric": "eléctrico",
	"ice":      "hielo",
	"fighting": "lucha",
	"poison":   "veneno",
	"ground":   "tierra",
	"flying":   "volador",
	"psychic":  "psíquico",
	"bug":      "bicho",
	"rock":     "roca",
	"ghost":    "fantasma",
	"dragon":   "dragón",
	"dark":     "siniestro",
	"steel":    "acero",
	"fairy":    "hada",
}

// hiddenTypes are upstream catalog entries with no pokemon.
var hiddenTypes = map[string]bool{
	"unknown": true,
	"shadow":  true,
}

// TranslateType returns the translated name of an upstream type.
// Unmapped names are returned unchanged.
func TranslateType(name string) string {
	if translated, ok := typeNames[name]; ok {
		return translated
	}
	return name
}

// TranslateTypes translates names element-wise, preserving order.
func TranslateTypes(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = TranslateType(name)
	}
	return out
}

// ExtractID returns the last non-empty "/"-delimited segment of a resource
// URL ("https://pokeapi.co/api/v2/pokemon/25/" -> "25").
func ExtractID(resourceURL string) string {
	parts := strings.Split(resourceURL, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}
