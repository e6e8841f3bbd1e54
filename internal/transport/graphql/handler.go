package graphql

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// number is satisfied by the Number type the decoder produces under UseNumber.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// normalizeNumbers turns decoded numbers into int64 where integral, float64 otherwise,
// the shapes gqlparser's variable coercion accepts.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}

func decodeRequest(body []byte, req *Request) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(req); err != nil {
		return err
	}
	if req.Variables != nil {
		req.Variables = normalizeNumbers(req.Variables).(map[string]any)
	}
	return nil
}

// Handler serves POST /graphql with a JSON body and GET /graphql?query=.
func (e *Executor) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		switch c.Request.Method {
		case http.MethodGet:
			req.Query = c.Query("query")
			req.OperationName = c.Query("operationName")
			if v := c.Query("variables"); v != "" {
				var wrap Request
				if err := decodeRequest([]byte(`{"variables":`+v+`}`), &wrap); err != nil {
					badRequest(c, "variables must be a JSON object")
					return
				}
				req.Variables = wrap.Variables
			}
		default:
			body, err := c.GetRawData()
			if err != nil {
				badRequest(c, "cannot read request body")
				return
			}
			if err := decodeRequest(body, &req); err != nil {
				badRequest(c, "request body must be a JSON object with a query")
				return
			}
		}
		// GET must not change state
		resp := e.run(c.Request.Context(), req, c.Request.Method != http.MethodGet)
		b, err := json.Marshal(resp)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
	}
}

func badRequest(c *gin.Context, msg string) {
	resp := &Response{Errors: gqlerror.List{gqlerror.Errorf("%s", msg)}}
	b, _ := json.Marshal(resp)
	c.Data(http.StatusBadRequest, "application/json; charset=utf-8", b)
}
