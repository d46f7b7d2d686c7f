package timeline

import (
	"slices"

	"github.com/desertthunder/club100/internal/models"
)

// DefaultLanguage is used when a requested language has no catalog.
const DefaultLanguage = "da"

// Language is a supported timeline language.
type Language struct {
	Code  string
	Label string
}

var languages = []Language{
	{Code: "da", Label: "Dansk"},
	{Code: "en", Label: "English"},
}

var snippetCatalog = map[string][]models.Snippet{
	"da": {
		{Kind: models.SnippetTTS, Text: "Velkommen til Club 100! Skål!"},
		{Kind: models.SnippetTTS, Text: "Drik!"},
	},
	"en": {
		{Kind: models.SnippetTTS, Text: "Welcome to Club 100! Cheers!"},
		{Kind: models.SnippetTTS, Text: "Drink!"},
	},
}

var demoSongs = []models.Song{
	{URL: "https://www.youtube.com/watch?v=2Vv-BfVoq4g", Title: "Ed Sheeran - Perfect"},
	{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Title: "Rick Astley - Never Gonna Give You Up"},
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	return slices.Clone(languages)
}

// IsSupported reports whether code has a snippet catalog.
func IsSupported(code string) bool {
	_, ok := snippetCatalog[code]
	return ok
}

// Snippets returns the snippet catalog for language, falling back to [DefaultLanguage].
func Snippets(language string) []models.Snippet {
	s, ok := snippetCatalog[language]
	if !ok {
		s = snippetCatalog[DefaultLanguage]
	}
	return slices.Clone(s)
}

// DemoItems interleaves the demo songs with the language's snippets: song, snippet, song, snippet...
func DemoItems(language string) []models.TrackItem {
	snippets := Snippets(language)
	n := max(len(demoSongs), len(snippets))

	items := make([]models.TrackItem, 0, len(demoSongs)+len(snippets))
	for i := 0; i < n; i++ {
		if i < len(demoSongs) {
			items = append(items, models.SongItem(demoSongs[i]))
		}
		if i < len(snippets) {
			items = append(items, models.SnippetItem(snippets[i]))
		}
	}
	return items
}
