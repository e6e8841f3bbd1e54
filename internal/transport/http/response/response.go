package response

import "go-gin-blog/internal/core/apperr"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New never leaves data as null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error uses the default message for code when customMsg is empty.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

type fieldErrors struct {
	Errors []apperr.FieldError `json:"errors"`
}

// FromError maps a domain error onto the envelope. Validation failures carry their
// field list in data; internal causes are never exposed.
func FromError(err error) Resp {
	ae := apperr.As(err)
	r := Error(ae.Kind.Status(), ae.Summary())
	if len(ae.Fields) > 0 {
		r.Data = fieldErrors{Errors: ae.Fields}
	}
	return r
}
