package blogclient

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the first GraphQL error of a failed operation.
type Error struct {
	Message    string `json:"message"`
	Extensions struct {
		Code   string       `json:"code"`
		Errors []FieldError `json:"errors"`
	} `json:"extensions"`
}

func (e *Error) Error() string {
	if e.Extensions.Code == "" {
		return e.Message
	}
	return e.Extensions.Code + ": " + e.Message
}

func (e *Error) Code() string { return e.Extensions.Code }

// CodeOf returns the extensions code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return ""
}

// fromGQL lifts the code and field errors out of the extensions map.
func fromGQL(ge *gqlerror.Error) *Error {
	e := &Error{Message: ge.Message}
	if len(ge.Extensions) == 0 {
		return e
	}
	if b, err := json.Marshal(ge.Extensions); err == nil {
		_ = json.Unmarshal(b, &e.Extensions)
	}
	return e
}
