package datasource

import (
	"strings"

	"weathernow/models"
)

// Placeholders used when the payload is missing the corresponding field.
const (
	FallbackCity        = "Unknown city"
	FallbackDescription = "Unknown weather"
)

// Normalize maps a decoded current-weather payload to a display-ready
// Weather value. Fields that are absent or carry an unexpected type map to
// their fallback, never an error: the API omits fields freely, so every
// access is guarded by a type assertion.
func Normalize(payload map[string]any) models.Weather {
	weather := models.Weather{
		City:        FallbackCity,
		Description: FallbackDescription,
	}

	if name, ok := payload["name"].(string); ok {
		if city := Sanitize(name); city != "" {
			weather.City = city
		}
	}

	if conditions, ok := payload["weather"].([]any); ok && len(conditions) > 0 {
		if entry, ok := conditions[0].(map[string]any); ok {
			if description, ok := entry["description"].(string); ok {
				if desc := Sanitize(description); desc != "" {
					weather.Description = desc
				}
			}
		}
	}

	if main, ok := payload["main"].(map[string]any); ok {
		if temp, ok := main["temp"].(float64); ok {
			weather.TemperatureCelsius = temp
		}
	}

	return weather
}

// Sanitize trims surrounding whitespace, uppercases the first character and
// lowercases the remainder. Empty input yields the empty string. Casing is
// locale-naive by design.
func Sanitize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	runes := []rune(trimmed)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}
