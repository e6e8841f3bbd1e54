// Package graphql serves the blog schema with a small executor over gqlparser.
// Resolvers return plain structs; the executor projects them onto the selection set.
package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"

	"go-gin-blog/internal/core/apperr"
)

//go:embed schema.graphqls
var schemaSDL string

// Schema is parsed once; a broken schema file fails at init.
var Schema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSDL})

type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Response omits "data" when the request never reached execution.
type Response struct {
	Data     *Object
	Executed bool
	Errors   gqlerror.List
}

func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r.Executed {
		buf.WriteString(`"data":`)
		if r.Data == nil {
			buf.WriteString("null")
		} else {
			b, err := r.Data.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
	}
	if len(r.Errors) > 0 {
		if r.Executed {
			buf.WriteByte(',')
		}
		buf.WriteString(`"errors":`)
		b, err := json.Marshal(r.Errors)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Object is a JSON object that keeps its keys in selection order.
type Object struct {
	keys []string
	vals map[string]any
}

func newObject() *Object { return &Object{vals: map[string]any{}} }

func (o *Object) set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *Object) Get(k string) (any, bool) {
	v, ok := o.vals[k]
	return v, ok
}

func (o *Object) Keys() []string { return o.keys }

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResolveFunc receives coerced arguments and returns any JSON-marshalable value.
type ResolveFunc func(ctx context.Context, args map[string]any) (any, error)

type Executor struct {
	schema   *ast.Schema
	query    map[string]ResolveFunc
	mutation map[string]ResolveFunc
	log      *zap.Logger
}

func NewExecutor(l *zap.Logger) *Executor {
	if l == nil {
		l = zap.NewNop()
	}
	return &Executor{
		schema:   Schema,
		query:    map[string]ResolveFunc{},
		mutation: map[string]ResolveFunc{},
		log:      l,
	}
}

func (e *Executor) Query(name string, fn ResolveFunc)    { e.query[name] = fn }
func (e *Executor) Mutation(name string, fn ResolveFunc) { e.mutation[name] = fn }

// Unresolved lists schema root fields that have no resolver, introspection aside.
func (e *Executor) Unresolved() []string {
	var out []string
	check := func(def *ast.Definition, set map[string]ResolveFunc) {
		if def == nil {
			return
		}
		for _, f := range def.Fields {
			if _, ok := set[f.Name]; !ok && !strings.HasPrefix(f.Name, "__") {
				out = append(out, def.Name+"."+f.Name)
			}
		}
	}
	check(e.schema.Query, e.query)
	check(e.schema.Mutation, e.mutation)
	return out
}

func (e *Executor) Execute(ctx context.Context, req Request) *Response {
	return e.run(ctx, req, true)
}

func (e *Executor) run(ctx context.Context, req Request, allowMutation bool) *Response {
	if req.Query == "" {
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("must provide query string")}}
	}
	doc, errs := gqlparser.LoadQuery(e.schema, req.Query)
	if len(errs) > 0 {
		for _, err := range errs {
			setCode(err, "GRAPHQL_VALIDATION_FAILED")
		}
		return &Response{Errors: errs}
	}
	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		msg := "must provide operation name if query contains multiple operations"
		if req.OperationName != "" {
			msg = fmt.Sprintf("unknown operation named %q", req.OperationName)
		}
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("%s", msg)}}
	}
	vars, err := validator.VariableValues(e.schema, op, req.Variables)
	if err != nil {
		list := asList(err)
		for _, ge := range list {
			setCode(ge, "BAD_USER_INPUT")
		}
		return &Response{Errors: list}
	}

	var (
		resolvers map[string]ResolveFunc
		root      *ast.Definition
	)
	switch op.Operation {
	case ast.Query:
		resolvers, root = e.query, e.schema.Query
	case ast.Mutation:
		if !allowMutation {
			return &Response{Errors: gqlerror.List{gqlerror.Errorf("mutations must use POST")}}
		}
		resolvers, root = e.mutation, e.schema.Mutation
	default:
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("%s operations are not supported", op.Operation)}}
	}

	x := &execution{vars: vars, log: e.log}
	data := newObject()
	nulled := false
	// root fields run one after another, which is what mutations require
	for _, f := range x.collect(op.SelectionSet, root.Name) {
		key := responseKey(f.field)
		path := ast.Path{ast.PathName(key)}
		if f.field.Name == "__typename" {
			data.set(key, root.Name)
			continue
		}
		fn, ok := resolvers[f.field.Name]
		if !ok {
			x.fail(path, f.field, gqlerror.Errorf("field %q is not supported", f.field.Name))
			data.set(key, nil)
			nulled = nulled || f.field.Definition.Type.NonNull
			continue
		}
		val, err := fn(ctx, f.field.ArgumentMap(vars))
		if err != nil {
			x.resolverError(path, f.field, err)
			data.set(key, nil)
			nulled = nulled || f.field.Definition.Type.NonNull
			continue
		}
		out, ok := x.complete(path, f, val)
		if !ok {
			nulled = true
		}
		data.set(key, out)
	}
	resp := &Response{Executed: true, Data: data, Errors: x.errs}
	if nulled {
		resp.Data = nil
	}
	return resp
}

type execution struct {
	vars map[string]any
	errs gqlerror.List
	log  *zap.Logger
}

// collected is one response key with every field node that contributes to it.
type collected struct {
	field *ast.Field
	sels  ast.SelectionSet
}

func responseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func (x *execution) collect(set ast.SelectionSet, typeName string) []*collected {
	var (
		order []*collected
		byKey = map[string]*collected{}
	)
	var walk func(ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				if !x.included(s.Directives) {
					continue
				}
				key := responseKey(s)
				if c, ok := byKey[key]; ok {
					c.sels = append(c.sels, s.SelectionSet...)
					continue
				}
				c := &collected{field: s, sels: append(ast.SelectionSet(nil), s.SelectionSet...)}
				byKey[key] = c
				order = append(order, c)
			case *ast.InlineFragment:
				if !x.included(s.Directives) || (s.TypeCondition != "" && s.TypeCondition != typeName) {
					continue
				}
				walk(s.SelectionSet)
			case *ast.FragmentSpread:
				if !x.included(s.Directives) || s.Definition == nil || s.Definition.TypeCondition != typeName {
					continue
				}
				walk(s.Definition.SelectionSet)
			}
		}
	}
	walk(set)
	return order
}

func (x *execution) included(dirs ast.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil {
		if v, _ := d.ArgumentMap(x.vars)["if"].(bool); v {
			return false
		}
	}
	if d := dirs.ForName("include"); d != nil {
		if v, _ := d.ArgumentMap(x.vars)["if"].(bool); !v {
			return false
		}
	}
	return true
}

// complete normalizes a resolver value to JSON shapes and projects it. ok is false when a
// non-null position ended up null, so the caller must null its own parent.
func (x *execution) complete(path ast.Path, c *collected, val any) (any, bool) {
	b, err := json.Marshal(val)
	if err != nil {
		x.resolverError(path, c.field, fmt.Errorf("encode %s: %w", c.field.Name, err))
		return nil, !c.field.Definition.Type.NonNull
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		x.resolverError(path, c.field, fmt.Errorf("decode %s: %w", c.field.Name, err))
		return nil, !c.field.Definition.Type.NonNull
	}
	return x.value(path, c.field, c.field.Definition.Type, c.sels, raw)
}

// value completes raw against t. A null in a non-null position records one error and
// reports !ok; the nearest nullable ancestor becomes null instead.
func (x *execution) value(path ast.Path, f *ast.Field, t *ast.Type, sels ast.SelectionSet, raw any) (any, bool) {
	if raw == nil {
		if t.NonNull {
			x.fail(path, f, x.internal("cannot return null for non-nullable field %s", f.Name))
			return nil, false
		}
		return nil, true
	}
	if t.Elem != nil {
		items, ok := raw.([]any)
		if !ok {
			x.fail(path, f, x.internal("expected a list for field %s", f.Name))
			return nil, !t.NonNull
		}
		out := make([]any, 0, len(items))
		for i, it := range items {
			v, ok := x.value(append(path, ast.PathIndex(i)), f, t.Elem, sels, it)
			if !ok {
				return nil, !t.NonNull
			}
			out = append(out, v)
		}
		return out, true
	}
	m, isObj := raw.(map[string]any)
	if len(sels) == 0 {
		_, isList := raw.([]any)
		if isObj || isList {
			x.fail(path, f, x.internal("expected a scalar for field %s", f.Name))
			return nil, !t.NonNull
		}
		return raw, true
	}
	if !isObj {
		x.fail(path, f, x.internal("expected an object for field %s", f.Name))
		return nil, !t.NonNull
	}
	obj := newObject()
	for _, c := range x.collect(sels, t.NamedType) {
		key := responseKey(c.field)
		if c.field.Name == "__typename" {
			obj.set(key, t.NamedType)
			continue
		}
		v, ok := x.value(append(path, ast.PathName(key)), c.field, c.field.Definition.Type, c.sels, m[c.field.Name])
		if !ok {
			return nil, !t.NonNull
		}
		obj.set(key, v)
	}
	return obj, true
}

func (x *execution) internal(format string, args ...any) *gqlerror.Error {
	err := gqlerror.Errorf(format, args...)
	setCode(err, apperr.KindInternal.Code())
	return err
}

func (x *execution) fail(path ast.Path, f *ast.Field, err *gqlerror.Error) {
	err.Path = append(ast.Path(nil), path...)
	if f.Position != nil {
		err.Locations = []gqlerror.Location{{Line: f.Position.Line, Column: f.Position.Column}}
	}
	x.errs = append(x.errs, err)
}

// resolverError maps domain errors onto GraphQL errors. Internal causes are logged, never sent.
func (x *execution) resolverError(path ast.Path, f *ast.Field, err error) {
	ae := apperr.As(err)
	ext := map[string]any{"code": ae.Kind.Code()}
	if len(ae.Fields) > 0 {
		ext["errors"] = ae.Fields
	}
	if ae.Kind == apperr.KindInternal {
		x.log.Error("graphql resolver failed", zap.String("field", f.Name), zap.Error(err))
	}
	x.fail(path, f, &gqlerror.Error{Message: ae.Public(), Extensions: ext})
}

func setCode(err *gqlerror.Error, code string) {
	if err.Extensions == nil {
		err.Extensions = map[string]any{}
	}
	if _, ok := err.Extensions["code"]; !ok {
		err.Extensions["code"] = code
	}
}

func asList(err error) gqlerror.List {
	var list gqlerror.List
	if errors.As(err, &list) {
		return list
	}
	var one *gqlerror.Error
	if errors.As(err, &one) {
		return gqlerror.List{one}
	}
	return gqlerror.List{gqlerror.Errorf("%s", err.Error())}
}
