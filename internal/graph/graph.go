// Package graph exposes the finance service over GraphQL. Nested fields such
// as account.transactions resolve lazily, one service call per field, and every
// call carries the session of the request.
package graph

import (
	"context"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/service"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"
)

// Request is a GraphQL request body
type Request struct {
	Query         string                 `json:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Schema is the executable finance schema
type Schema struct {
	schema graphql.Schema
}

// New builds the schema over the given services
func New(auth *service.AuthService, fin *service.FinanceService) (*Schema, error) {
	b := &builder{auth: auth, fin: fin}
	schema, err := b.build()
	if err != nil {
		return nil, err
	}
	return &Schema{schema: schema}, nil
}

// Execute runs req. The session is taken from ctx.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx, // Carries the session
	})
}

// resolve masks errors that are not part of the public taxonomy
func resolve(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p)
		if err == nil {
			return v, nil
		}
		if domain.IsPublic(err) {
			return nil, err
		}
		logrus.WithError(err).WithField("field", p.Info.FieldName).Error("GraphQL resolver failed")
		return nil, domain.Internal() // Hide the cause from the client
	}
}

// prop resolves a field of a *T source without reflection
func prop[T any](get func(*T) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(*T)
		if !ok || src == nil {
			return nil, nil
		}
		return get(src), nil
	}
}

func ptrs[T any](xs []T) []*T {
	out := make([]*T, len(xs))
	for i := range xs {
		out[i] = &xs[i]
	}
	return out
}
