package wellness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		url      string
		expected Category
	}{
		{"https://github.com/runnerr0/mindful", CategoryProductive},
		{"https://stackoverflow.com/questions/1", CategoryProductive},
		{"https://en.wikipedia.org/wiki/Go", CategoryEducational},
		{"https://www.coursera.org/learn/go", CategoryEducational},
		{"https://www.google.com/search?q=go", CategoryNeutral},
		{"https://www.amazon.com/dp/B000", CategoryNeutral},
		{"https://twitter.com/golang", CategorySocial},
		{"https://www.instagram.com/p/abc", CategorySocial},
		{"https://www.netflix.com/browse", CategoryEntertainment},
		{"https://old.reddit.com/r/golang", CategoryEntertainment},
		{"https://example.com/page", CategoryUnknown},
		{"https://some-random-site.io", CategoryUnknown},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, Categorize(tc.url), "category for %s", tc.url)
	}
}

func TestCategorize_CaseInsensitiveHostname(t *testing.T) {
	assert.Equal(t, CategoryProductive, Categorize("https://GitHub.com/x"))
	assert.Equal(t, CategorySocial, Categorize("https://WWW.FACEBOOK.COM/profile"))
}

func TestCategorize_MalformedURL(t *testing.T) {
	tests := []string{
		"",
		"not a url",
		"http://",
		"://missing-scheme",
		"%%%",
	}

	for _, raw := range tests {
		assert.Equal(t, CategoryUnknown, Categorize(raw), "input %q", raw)
	}
}

func TestCategorize_PriorityOrder(t *testing.T) {
	// docs.google.com is listed under PRODUCTIVE while google.com is NEUTRAL;
	// the hostname matches both substrings and PRODUCTIVE must win.
	assert.Equal(t, CategoryProductive, Categorize("https://docs.google.com/document/d/1"))
}

func TestBaseScore(t *testing.T) {
	assert.Equal(t, 1.0, BaseScore(CategoryProductive))
	assert.Equal(t, 0.9, BaseScore(CategoryEducational))
	assert.Equal(t, 0.7, BaseScore(CategoryNeutral))
	assert.Equal(t, 0.4, BaseScore(CategorySocial))
	assert.Equal(t, 0.2, BaseScore(CategoryEntertainment))
	assert.Equal(t, 0.5, BaseScore(CategoryUnknown))
	assert.Equal(t, 0.5, BaseScore(Category("BOGUS")))
}

func TestCategories_OrderAndTotality(t *testing.T) {
	cats := Categories()
	assert.Equal(t, []Category{
		CategoryProductive, CategoryEducational, CategoryNeutral,
		CategorySocial, CategoryEntertainment, CategoryUnknown,
	}, cats)
}
