// Package repotest is a behavioral suite every domain repository implementation must pass.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-blog/internal/domain"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(day int) time.Time { return base.AddDate(0, 0, day) }

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func RunUsers(t *testing.T, newRepo func(t *testing.T) domain.UserRepository) {
	ctx := context.Background()

	t.Run("CreateAndFind", func(t *testing.T) {
		r := newRepo(t)
		u := &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "h", Role: domain.RoleAuthor, Bio: "hi", CreatedAt: at(0), UpdatedAt: at(0)}
		require.NoError(t, r.Create(ctx, u))
		require.NotEmpty(t, u.ID, "Create assigns an id")

		got, err := r.FindByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Ann", got.Name)
		assert.Equal(t, "h", got.PasswordHash)
		assert.Equal(t, domain.RoleAuthor, got.Role)
		assert.True(t, got.CreatedAt.Equal(at(0)))

		byEmail, err := r.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, u.ID, byEmail.ID)

		missing, err := r.FindByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
		missing, err = r.FindByEmail(ctx, "nope@example.com")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		r := newRepo(t)
		for i, name := range []string{"a", "b", "c"} {
			require.NoError(t, r.Create(ctx, &domain.User{ID: name, Name: name, Email: name + "@x.io", Role: domain.RoleUser, CreatedAt: at(i), UpdatedAt: at(i)}))
		}
		got, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, ids(got, func(u domain.User) string { return u.ID }))
	})

	t.Run("ListTiesBrokenByID", func(t *testing.T) {
		r := newRepo(t)
		for _, id := range []string{"u3", "u1", "u2"} {
			require.NoError(t, r.Create(ctx, &domain.User{ID: id, Name: id, Email: id + "@x.io", Role: domain.RoleUser, CreatedAt: at(0), UpdatedAt: at(0)}))
		}
		for n := 0; n < 3; n++ {
			got, err := r.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"u1", "u2", "u3"}, ids(got, func(u domain.User) string { return u.ID }))
		}
	})

	t.Run("EmailTakenExcludesSelf", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Create(ctx, &domain.User{ID: "u1", Name: "a", Email: "a@x.io", Role: domain.RoleUser, CreatedAt: at(0)}))
		taken, err := r.EmailTaken(ctx, "a@x.io", "")
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = r.EmailTaken(ctx, "a@x.io", "u1")
		require.NoError(t, err)
		assert.False(t, taken)
		taken, err = r.EmailTaken(ctx, "b@x.io", "")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		r := newRepo(t)
		u := &domain.User{ID: "u1", Name: "a", Email: "a@x.io", PasswordHash: "h1", Role: domain.RoleUser, CreatedAt: at(0), UpdatedAt: at(0)}
		require.NoError(t, r.Create(ctx, u))

		u.Name = "renamed"
		u.PasswordHash = "h2"
		u.Role = domain.RoleAdmin
		u.UpdatedAt = at(1)
		require.NoError(t, r.Update(ctx, u))
		got, err := r.FindByID(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "renamed", got.Name)
		assert.Equal(t, "h2", got.PasswordHash)
		assert.Equal(t, domain.RoleAdmin, got.Role)

		require.NoError(t, r.Delete(ctx, "u1"))
		got, err = r.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, got)
		require.NoError(t, r.Delete(ctx, "u1"), "deleting twice is not an error")
	})
}

func RunPosts(t *testing.T, newRepo func(t *testing.T) domain.PostRepository) {
	ctx := context.Background()
	seed := func(t *testing.T, r domain.PostRepository) {
		t.Helper()
		posts := []domain.Post{
			{ID: "p1", Title: "First", Slug: "first", AuthorID: "a", Published: true, Tags: []string{"go"}, CreatedAt: at(0)},
			{ID: "p2", Title: "Second", Slug: "second", AuthorID: "b", Published: false, Tags: []string{"go", "db"}, CreatedAt: at(1)},
			{ID: "p3", Title: "Third", Slug: "third", AuthorID: "a", Published: false, Tags: nil, CreatedAt: at(2)},
			{ID: "p4", Title: "Fourth", Slug: "fourth", AuthorID: "b", Published: true, Tags: []string{"db"}, CreatedAt: at(3)},
		}
		for i := range posts {
			posts[i].Content = "body of " + posts[i].Title
			posts[i].UpdatedAt = posts[i].CreatedAt
			require.NoError(t, r.Create(ctx, &posts[i]))
		}
	}
	postID := func(p domain.Post) string { return p.ID }
	yes, no := true, false

	t.Run("ListFilters", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		all, err := r.List(ctx, domain.PostFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"p4", "p3", "p2", "p1"}, ids(all, postID))

		byAuthor, err := r.List(ctx, domain.PostFilter{AuthorID: "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p3", "p1"}, ids(byAuthor, postID))

		pub, err := r.List(ctx, domain.PostFilter{Published: &yes})
		require.NoError(t, err)
		assert.Equal(t, []string{"p4", "p1"}, ids(pub, postID))

		drafts, err := r.List(ctx, domain.PostFilter{Published: &no, AuthorID: "b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p2"}, ids(drafts, postID))

		tagged, err := r.List(ctx, domain.PostFilter{Tag: "db"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p4", "p2"}, ids(tagged, postID))

		none, err := r.List(ctx, domain.PostFilter{AuthorID: "zzz"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("ListTiesBrokenByID", func(t *testing.T) {
		r := newRepo(t)
		for _, id := range []string{"t3", "t1", "t4", "t2"} {
			require.NoError(t, r.Create(ctx, &domain.Post{
				ID: id, Title: "Tie " + id, Slug: "tie-" + id, Content: "same instant", AuthorID: "a",
				Published: true, Tags: []string{}, CreatedAt: at(5), UpdatedAt: at(5),
			}))
		}
		require.NoError(t, r.Create(ctx, &domain.Post{
			ID: "t0", Title: "Newer", Slug: "newer", Content: "later", AuthorID: "a",
			Published: true, Tags: []string{}, CreatedAt: at(6), UpdatedAt: at(6),
		}))
		for n := 0; n < 3; n++ {
			got, err := r.List(ctx, domain.PostFilter{Published: &yes})
			require.NoError(t, err)
			assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4"}, ids(got, postID))
		}
	})

	t.Run("FindAndTags", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)
		p, err := r.FindByID(ctx, "p2")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, []string{"go", "db"}, p.Tags)
		assert.False(t, p.Published)

		p, err = r.FindByID(ctx, "p3")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.NotNil(t, p.Tags)
		assert.Empty(t, p.Tags)

		p, err = r.FindBySlug(ctx, "fourth")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "p4", p.ID)

		p, err = r.FindByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, p)
		p, err = r.FindBySlug(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("TitleTaken", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)
		taken, err := r.TitleTaken(ctx, "First", "")
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = r.TitleTaken(ctx, "First", "p1")
		require.NoError(t, err)
		assert.False(t, taken)
		taken, err = r.TitleTaken(ctx, "Fifth", "")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)
		p, err := r.FindByID(ctx, "p3")
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Published = true
		p.Title = "Third, revised"
		p.Tags = []string{"ops"}
		p.UpdatedAt = at(10)
		require.NoError(t, r.Update(ctx, p))

		got, err := r.FindByID(ctx, "p3")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Published)
		assert.Equal(t, "Third, revised", got.Title)
		assert.Equal(t, []string{"ops"}, got.Tags)
		assert.True(t, got.CreatedAt.Equal(at(2)), "createdAt survives updates")

		require.NoError(t, r.Delete(ctx, "p3"))
		all, err := r.List(ctx, domain.PostFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"p4", "p2", "p1"}, ids(all, postID))
	})

	t.Run("ReturnedValuesAreCopies", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)
		p, err := r.FindByID(ctx, "p2")
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Tags[0] = "mutated"
		p.Title = "mutated"
		again, err := r.FindByID(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, "Second", again.Title)
		assert.Equal(t, []string{"go", "db"}, again.Tags)
	})
}
