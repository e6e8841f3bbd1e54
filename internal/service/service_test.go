package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/repo"
	"go-gin-blog/pkg/pagination"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	posts *repo.MemPostRepo
	users *repo.MemUserRepo
	ps    *PostService
	us    *UserService
	ss    *SearchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{posts: repo.NewMemPostRepo(), users: repo.NewMemUserRepo()}
	limits := pagination.Limits{Default: 10, Max: 100}
	clock := func() time.Time { return t0.Add(time.Hour) }
	f.ps = NewPostService(f.posts, f.users, limits, nil).WithClock(clock)
	f.us = NewUserService(f.users, limits, nil).WithClock(clock)
	f.ss = NewSearchService(f.ps, f.us)

	ctx := context.Background()
	for i, u := range []domain.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: domain.RoleAuthor, Bio: "writes about go"},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser},
		{ID: "root", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin},
	} {
		u.CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.users.Create(ctx, &u))
	}
	return f
}

func (f *fixture) addPost(t *testing.T, id, author string, published bool, age int) {
	t.Helper()
	require.NoError(t, f.posts.Create(context.Background(), &domain.Post{
		ID: id, Title: "Post " + id, Content: "content of post " + id, AuthorID: author,
		Published: published, Tags: []string{"t"}, CreatedAt: t0.Add(-time.Duration(age) * time.Minute),
	}))
}

var (
	anon  *domain.Caller
	alice = &domain.Caller{ID: "alice", Role: domain.RoleAuthor}
	bob   = &domain.Caller{ID: "bob", Role: domain.RoleUser}
	admin = &domain.Caller{ID: "root", Role: domain.RoleAdmin}
)

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	require.True(t, apperr.Is(err, apperr.KindValidation), "want validation error, got %v", err)
	var out []string
	for _, f := range apperr.As(err).Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestDraftVisibility(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "d1", "alice", false, 0)
	ctx := context.Background()

	_, err := f.ps.Get(ctx, anon, "d1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Post not found")

	_, err = f.ps.Get(ctx, bob, "d1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := f.ps.Get(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Author.Name)

	_, err = f.ps.Get(ctx, admin, "d1")
	require.NoError(t, err)

	_, err = f.ps.Get(ctx, admin, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListFiltersBeforePaging(t *testing.T) {
	f := newFixture(t)
	// 14 published posts newest first, plus drafts interleaved that anonymous callers never count
	for i := 0; i < 14; i++ {
		f.addPost(t, fmt.Sprintf("p%02d", i), "alice", true, i*2)
		f.addPost(t, fmt.Sprintf("d%02d", i), "bob", false, i*2+1)
	}
	ctx := context.Background()

	page, err := f.ps.List(ctx, anon, ListPostsParams{Page: ptr(2), Limit: ptr(6)})
	require.NoError(t, err)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 6, Total: 14, TotalPages: 3, HasNext: true, HasPrev: true}, page.Pagination)
	require.Len(t, page.Items, 6)
	assert.Equal(t, "p06", page.Items[0].ID)
	assert.Equal(t, "p11", page.Items[5].ID)
	assert.Equal(t, "Alice", page.Items[0].Author.Name)

	last, err := f.ps.List(ctx, anon, ListPostsParams{Page: ptr(3), Limit: ptr(6)})
	require.NoError(t, err)
	assert.Len(t, last.Items, 2)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)

	asBob, err := f.ps.List(ctx, bob, ListPostsParams{})
	require.NoError(t, err)
	assert.Equal(t, 28, asBob.Pagination.Total, "bob sees his own drafts")
	assert.Len(t, asBob.Items, 10)

	drafts, err := f.ps.List(ctx, alice, ListPostsParams{Filter: domain.PostFilter{Published: ptr(false)}})
	require.NoError(t, err)
	assert.Zero(t, drafts.Pagination.Total, "alice cannot see bob's drafts")

	byAuthor, err := f.ps.ListByAuthor(ctx, admin, "bob", nil, ptr(500))
	require.NoError(t, err)
	assert.Equal(t, 14, byAuthor.Pagination.Total)
	assert.Equal(t, 100, byAuthor.Pagination.Limit)

	beyond, err := f.ps.List(ctx, anon, ListPostsParams{Page: ptr(9), Limit: ptr(6)})
	require.NoError(t, err)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 3, beyond.Pagination.TotalPages)
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ps.Create(ctx, anon, CreatePostInput{Title: "Hello", Content: "long enough content"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = f.ps.Create(ctx, bob, CreatePostInput{Title: "Hi", Content: "short", Tags: []string{"ok", " "}})
	assert.ElementsMatch(t, []string{"title", "content", "tags[1]"}, fieldsOf(t, err))

	p, err := f.ps.Create(ctx, bob, CreatePostInput{Title: "  Hello, World!  ", Content: "# Heading\n\nlong enough content", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", p.Title)
	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "Heading long enough content", p.Excerpt)
	assert.Equal(t, "bob", p.AuthorID)
	assert.False(t, p.Published)
	assert.Equal(t, t0.Add(time.Hour), p.CreatedAt)
	assert.Equal(t, "Bob", p.Author.Name)

	_, err = f.ps.Create(ctx, alice, CreatePostInput{Title: "Hello, World!", Content: "another long body"})
	assert.Equal(t, []string{"title"}, fieldsOf(t, err))
	assert.Equal(t, "title already taken", apperr.As(err).Fields[0].Message)

	// titles are compared case-sensitively
	_, err = f.ps.Create(ctx, alice, CreatePostInput{Title: "hello, world!", Content: "another long body"})
	require.NoError(t, err)

	bySlug, err := f.ps.GetBySlug(ctx, bob, "hello-world")
	require.NoError(t, err)
	assert.NotEmpty(t, bySlug.ID)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "a1", "alice", false, 0)
	f.addPost(t, "a2", "alice", true, 1)
	f.addPost(t, "b1", "bob", true, 2)
	ctx := context.Background()

	_, err := f.ps.Update(ctx, anon, "a2", UpdatePostInput{Title: ptr("New title")})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = f.ps.Update(ctx, bob, "a1", UpdatePostInput{Title: ptr("New title")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "hidden drafts look missing")

	_, err = f.ps.Update(ctx, bob, "a2", UpdatePostInput{Title: ptr("New title")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	// authorization comes before validation
	_, err = f.ps.Update(ctx, bob, "a2", UpdatePostInput{Title: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.ps.Update(ctx, alice, "a1", UpdatePostInput{})
	assert.Equal(t, []string{"input"}, fieldsOf(t, err))

	_, err = f.ps.Update(ctx, alice, "a1", UpdatePostInput{Title: ptr("Post b1")})
	assert.Equal(t, []string{"title"}, fieldsOf(t, err), "owners still respect title uniqueness")

	same, err := f.ps.Update(ctx, alice, "a1", UpdatePostInput{Title: ptr("Post a1"), Tags: []string{}})
	require.NoError(t, err, "keeping its own title is fine")
	assert.Empty(t, same.Tags)
	assert.Equal(t, t0.Add(time.Hour), same.UpdatedAt)

	up, err := f.ps.Update(ctx, admin, "a1", UpdatePostInput{Content: ptr("rewritten body text"), Published: ptr(true)})
	require.NoError(t, err)
	assert.True(t, up.Published)
	assert.Equal(t, "rewritten body text", up.Excerpt)
	assert.Equal(t, "alice", up.AuthorID, "admin edits keep the author")
}

func TestDeleteAndToggle(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "a1", "alice", true, 0)
	ctx := context.Background()

	assert.True(t, apperr.Is(f.ps.Delete(ctx, bob, "a1"), apperr.KindForbidden))
	_, err := f.ps.TogglePublish(ctx, bob, "a1", false)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	p, err := f.ps.TogglePublish(ctx, alice, "a1", false)
	require.NoError(t, err)
	assert.False(t, p.Published)
	_, err = f.ps.Get(ctx, anon, "a1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, f.ps.Delete(ctx, admin, "a1"))
	_, err = f.ps.Get(ctx, admin, "a1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(f.ps.Delete(ctx, admin, "a1"), apperr.KindNotFound))
}

func TestUserService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	me, err := f.us.Me(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "Bob", me.Name)
	_, err = f.us.Me(ctx, anon)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = f.us.Get(ctx, bob, "alice")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.us.Get(ctx, admin, "alice")
	require.NoError(t, err)
	_, err = f.us.Get(ctx, admin, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.us.List(ctx, bob, nil, nil, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	all, err := f.us.List(ctx, admin, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Pagination.Total)
	assert.Equal(t, "root", all.Items[0].ID, "newest first")
	found, err := f.us.List(ctx, admin, nil, nil, "GO")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "alice", found.Items[0].ID)

	_, err = f.us.Update(ctx, bob, "bob", UpdateUserInput{Role: ptr("admin")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.us.Update(ctx, bob, "alice", UpdateUserInput{Name: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.us.Update(ctx, bob, "bob", UpdateUserInput{Email: ptr("ALICE@example.com")})
	assert.Equal(t, []string{"email"}, fieldsOf(t, err))
	_, err = f.us.Update(ctx, bob, "bob", UpdateUserInput{Email: ptr("nope"), Password: ptr("123"), Name: ptr(" ")})
	assert.ElementsMatch(t, []string{"email", "password", "name"}, fieldsOf(t, err))

	u, err := f.us.Update(ctx, bob, "bob", UpdateUserInput{Name: ptr("Robert"), Bio: ptr("hi")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.Name)

	u, err = f.us.SetRole(ctx, admin, "bob", "AUTHOR")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAuthor, u.Role)
	_, err = f.us.SetRole(ctx, admin, "bob", "owner")
	assert.Equal(t, []string{"role"}, fieldsOf(t, err))

	assert.True(t, apperr.Is(f.us.Delete(ctx, alice, "bob"), apperr.KindForbidden))
	require.NoError(t, f.us.Delete(ctx, admin, "bob"))
	_, err = f.us.Get(ctx, admin, "bob")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSearchService(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "pub", "alice", true, 0)
	f.addPost(t, "draft", "bob", false, 1)
	ctx := context.Background()

	res, err := f.ss.Search(ctx, anon, "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Users)
	assert.NotNil(t, res.Posts)

	res, err = f.ss.Search(ctx, anon, "post")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "pub", res.Posts[0].ID)

	res, err = f.ss.Search(ctx, bob, "post")
	require.NoError(t, err)
	assert.Len(t, res.Posts, 2)

	again, err := f.ss.Search(ctx, bob, "post")
	require.NoError(t, err)
	assert.Equal(t, res, again)

	res, err = f.ss.Search(ctx, anon, "example.com")
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	for _, u := range res.Users {
		assert.Empty(t, u.Email, "anonymous search hides %s's email", u.ID)
	}

	emails := func(us []domain.User) map[string]string {
		out := map[string]string{}
		for _, u := range us {
			out[u.ID] = u.Email
		}
		return out
	}
	res, err = f.ss.Search(ctx, bob, "example.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "", "bob": "bob@example.com", "root": ""}, emails(res.Users))

	res, err = f.ss.Search(ctx, admin, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", emails(res.Users)["alice"])

	stored, err := f.users.FindByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(u *domain.User) (string, error) { return "tok-" + u.ID, nil }

func TestAuthService(t *testing.T) {
	users := repo.NewMemUserRepo()
	s := NewAuthService(users, fakeIssuer{}, nil)
	ctx := context.Background()

	out, err := s.Register(ctx, RegisterInput{Name: "Zoe", Email: " Zoe@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-"+out.User.ID, out.Token)
	assert.Equal(t, domain.RoleUser, out.User.Role)
	assert.Equal(t, "zoe@example.com", out.User.Email)
	assert.NotEqual(t, "secret1", out.User.PasswordHash)

	_, err = s.Register(ctx, RegisterInput{Name: "Zoe 2", Email: "zoe@example.com", Password: "secret1"})
	assert.Equal(t, []string{"email"}, fieldsOf(t, err))
	_, err = s.Register(ctx, RegisterInput{Email: "bad", Password: "1"})
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fieldsOf(t, err))

	in, err := s.Login(ctx, LoginInput{Email: "ZOE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, in.User.ID)

	_, wrongPw := s.Login(ctx, LoginInput{Email: "zoe@example.com", Password: "nope"})
	_, unknown := s.Login(ctx, LoginInput{Email: "who@example.com", Password: "nope"})
	assert.True(t, apperr.Is(wrongPw, apperr.KindUnauthenticated))
	assert.Equal(t, wrongPw.Error(), unknown.Error())
	assert.Equal(t, "invalid email or password", wrongPw.Error())
}
