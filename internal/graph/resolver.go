package graph

import (
	"context"

	"agrishop-be/internal/content"
	"agrishop-be/internal/product"
)

type ProductReader interface {
	List(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, id string) (*product.Product, error)
}

type ContentLister[T content.Entry] interface {
	List(ctx context.Context) ([]T, error)
}

// Resolver holds the read services behind the public GraphQL schema.
type Resolver struct {
	Products ProductReader
	AboutUs  ContentLister[*content.AboutUs]
	Services ContentLister[*content.ConsultingService]
	Projects ContentLister[*content.Project]
}
