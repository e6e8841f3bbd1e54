// Package search does case-insensitive substring matching over posts and users.
package search

import (
	"strings"

	"go-gin-blog/internal/domain"
)

type Result struct {
	Posts []domain.Post `json:"posts"`
	Users []domain.User `json:"users"`
}

// Run filters both collections with the same query. An empty query matches nothing.
func Run(query string, posts []domain.Post, users []domain.User) Result {
	res := Result{Posts: []domain.Post{}, Users: []domain.User{}}
	q := normalize(query)
	if q == "" {
		return res
	}
	for _, p := range posts {
		if matchPost(p, q) {
			res.Posts = append(res.Posts, p)
		}
	}
	for _, u := range users {
		if matchUser(u, q) {
			res.Users = append(res.Users, u)
		}
	}
	return res
}

// MatchUser is the user predicate on its own, used by the admin listing.
func MatchUser(u domain.User, query string) bool {
	q := normalize(query)
	return q != "" && matchUser(u, q)
}

// Blank reports whether query would match nothing.
func Blank(query string) bool { return normalize(query) == "" }

func normalize(q string) string { return strings.ToLower(strings.TrimSpace(q)) }

func contains(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}

func matchPost(p domain.Post, q string) bool {
	if contains(p.Title, q) || contains(p.Excerpt, q) || contains(p.Content, q) {
		return true
	}
	for _, tag := range p.Tags {
		if contains(tag, q) {
			return true
		}
	}
	return false
}

func matchUser(u domain.User, q string) bool {
	return contains(u.Name, q) || contains(u.Email, q) || contains(u.Bio, q)
}
