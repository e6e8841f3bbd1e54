package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-gin-blog/internal/domain"
)

var (
	posts = []domain.Post{
		{ID: "1", Title: "Getting Started with GraphQL", Excerpt: "Learn the basics", Tags: []string{"GraphQL", "Apollo"}},
		{ID: "2", Title: "Building Modern UIs with Next.js", Content: "Server components", Tags: []string{"React"}},
		{ID: "3", Title: "CSS Grid vs Flexbox", Excerpt: "Layout", Tags: []string{"CSS", "Layout"}},
	}
	users = []domain.User{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Bio: "Passionate about GraphQL"},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com"},
		{ID: "3", Name: "Mike Johnson", Email: "mike@example.com", Bio: "Backend architect"},
	}
)

func ids[T any](items []T, id func(T) string) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func postIDs(ps []domain.Post) []string { return ids(ps, func(p domain.Post) string { return p.ID }) }
func userIDs(us []domain.User) []string { return ids(us, func(u domain.User) string { return u.ID }) }

func TestRunEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   "} {
		res := Run(q, posts, users)
		assert.NotNil(t, res.Posts)
		assert.NotNil(t, res.Users)
		assert.Empty(t, res.Posts)
		assert.Empty(t, res.Users)
	}
}

func TestRunMatchesAcrossFields(t *testing.T) {
	res := Run("graphql", posts, users)
	assert.Equal(t, []string{"1"}, postIDs(res.Posts))
	assert.Equal(t, []string{"1"}, userIDs(res.Users), "bio match")

	res = Run("SERVER", posts, users)
	assert.Equal(t, []string{"2"}, postIDs(res.Posts), "content match is case-insensitive")

	res = Run("layout", posts, users)
	assert.Equal(t, []string{"3"}, postIDs(res.Posts))

	res = Run("example.com", posts, users)
	assert.Equal(t, []string{"1", "2", "3"}, userIDs(res.Users), "order preserved")
}

func TestRunMissingBioIsNoMatch(t *testing.T) {
	res := Run("architect", posts, users)
	assert.Equal(t, []string{"3"}, userIDs(res.Users))
}

func TestRunIsDeterministic(t *testing.T) {
	a := Run("j", posts, users)
	b := Run("j", posts, users)
	assert.Equal(t, a, b)
}

func TestMatchUser(t *testing.T) {
	assert.True(t, MatchUser(users[1], "SMITH"))
	assert.False(t, MatchUser(users[1], ""))
}
