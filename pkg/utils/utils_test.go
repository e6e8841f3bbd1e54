package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("s3cret-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pw", h)
	assert.True(t, CheckPassword("s3cret-pw", h))
	assert.False(t, CheckPassword("wrong", h))
	assert.False(t, CheckPassword("s3cret-pw", ""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "getting-started-with-graphql", Slugify("Getting Started with GraphQL"))
	assert.Equal(t, "building-modern-uis-with-next-js", Slugify("  Building Modern UIs with Next.js! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestExcerpt(t *testing.T) {
	content := "# Title\n\nGraphQL is a query language.\n\n## More\nText"
	assert.Equal(t, "Title GraphQL is a query language. More Text", Excerpt(content, 200))

	long := Excerpt(strings.Repeat("word ", 100), 20)
	assert.True(t, strings.HasSuffix(long, "…"))
	assert.LessOrEqual(t, len([]rune(long)), 21)
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
