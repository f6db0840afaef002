package wellness

import (
	"net/url"
	"strings"
)

// Category classifies a website for wellness scoring.
type Category string

const (
	CategoryProductive    Category = "PRODUCTIVE"
	CategoryEducational   Category = "EDUCATIONAL"
	CategoryNeutral       Category = "NEUTRAL"
	CategorySocial        Category = "SOCIAL"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryUnknown       Category = "UNKNOWN"
)

// categoryDef describes one category: its base score weight and the domain
// substrings that place a site in it.
type categoryDef struct {
	category  Category
	baseScore float64
	domains   []string
}

// categoryTable is the fixed classification table. Order matters: categories
// are checked top to bottom and the first domain match wins. The table is
// never mutated after program start.
var categoryTable = []categoryDef{
	{
		category:  CategoryProductive,
		baseScore: 1.0,
		domains: []string{
			"github.com", "stackoverflow.com", "docs.google.com",
			"notion.so", "slack.com", "trello.com", "asana.com",
		},
	},
	{
		category:  CategoryEducational,
		baseScore: 0.9,
		domains: []string{
			"wikipedia.org", "coursera.org", "udemy.com",
			"khanacademy.org", "edx.org",
		},
	},
	{
		category:  CategoryNeutral,
		baseScore: 0.7,
		domains: []string{
			"google.com", "amazon.com", "apple.com", "microsoft.com",
		},
	},
	{
		category:  CategorySocial,
		baseScore: 0.4,
		domains: []string{
			"facebook.com", "twitter.com", "instagram.com",
			"linkedin.com", "tiktok.com", "snapchat.com",
		},
	},
	{
		category:  CategoryEntertainment,
		baseScore: 0.2,
		domains: []string{
			"netflix.com", "hulu.com", "disney.com",
			"twitch.tv", "reddit.com", "buzzfeed.com",
		},
	},
}

const unknownBaseScore = 0.5

// Categorize maps a URL to its wellness category by matching the lower-cased
// hostname against the category domain lists. Unparseable URLs and URLs with
// no matching domain fall back to CategoryUnknown.
func Categorize(rawURL string) Category {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return CategoryUnknown
	}

	host := strings.ToLower(u.Hostname())
	for _, def := range categoryTable {
		for _, d := range def.domains {
			if strings.Contains(host, d) {
				return def.category
			}
		}
	}

	return CategoryUnknown
}

// BaseScore returns the static score weight for a category. Unrecognized
// categories get the UNKNOWN weight.
func BaseScore(c Category) float64 {
	for _, def := range categoryTable {
		if def.category == c {
			return def.baseScore
		}
	}
	return unknownBaseScore
}

// Categories returns every category in priority order, UNKNOWN last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryTable)+1)
	for _, def := range categoryTable {
		out = append(out, def.category)
	}
	return append(out, CategoryUnknown)
}
