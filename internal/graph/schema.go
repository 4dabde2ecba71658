// Package graph serves a read-only GraphQL view of the catalog and the
// site content. Orders are never exposed here.
package graph

import (
	"errors"
	"strings"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/content"
	"agrishop-be/internal/product"

	"github.com/graphql-go/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"imageUrl":    &graphql.Field{Type: graphql.String},
		"price": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.String),
			Description: "Decimal amount with two fraction digits.",
		},
		"category":  &graphql.Field{Type: graphql.String},
		"stock":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"inStock":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var aboutUsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AboutUsSection",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"section":    &graphql.Field{Type: graphql.String},
		"title":      &graphql.Field{Type: graphql.String},
		"content":    &graphql.Field{Type: graphql.String},
		"orderIndex": &graphql.Field{Type: graphql.Int},
	},
})

var serviceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Service",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":       &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"orderIndex":  &graphql.Field{Type: graphql.Int},
	},
})

var projectType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Project",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"orderIndex":  &graphql.Field{Type: graphql.Int},
	},
})

func listOf(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

// NewSchema builds the query-only schema over r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type:    listOf(productType),
				Resolve: r.products,
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.product,
			},
			"aboutUs": &graphql.Field{
				Type:    listOf(aboutUsType),
				Resolve: r.aboutUs,
			},
			"services": &graphql.Field{
				Type: listOf(serviceType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.services,
			},
			"projects": &graphql.Field{
				Type:    listOf(projectType),
				Resolve: r.projects,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func (r *Resolver) products(p graphql.ResolveParams) (interface{}, error) {
	products, err := r.Products.List(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	out := make([]map[string]interface{}, 0, len(products))
	for _, prod := range products {
		out = append(out, productView(prod))
	}
	return out, nil
}

func (r *Resolver) product(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	prod, err := r.Products.Get(p.Context, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, publicError(err)
	}
	return productView(*prod), nil
}

func (r *Resolver) aboutUs(p graphql.ResolveParams) (interface{}, error) {
	entries, err := r.AboutUs.List(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			"id":         e.ID,
			"section":    e.Section,
			"title":      e.Title,
			"content":    e.Content,
			"orderIndex": e.OrderIndex,
		})
	}
	return out, nil
}

func (r *Resolver) services(p graphql.ResolveParams) (interface{}, error) {
	entries, err := r.Services.List(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	category, _ := p.Args["category"].(string)

	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		out = append(out, map[string]interface{}{
			"id":          e.ID,
			"title":       e.Title,
			"description": e.Description,
			"category":    e.Category,
			"orderIndex":  e.OrderIndex,
		})
	}
	return out, nil
}

func (r *Resolver) projects(p graphql.ResolveParams) (interface{}, error) {
	entries, err := r.Projects.List(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, projectView(e))
	}
	return out, nil
}

func productView(p product.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"imageUrl":    p.ImageURL,
		"price":       p.Price.StringFixed(2),
		"category":    p.Category,
		"stock":       p.Stock,
		"inStock":     p.Stock > 0,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
}

func projectView(p *content.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"orderIndex":  p.OrderIndex,
	}
}

// publicError hides infrastructure details from clients.
func publicError(err error) error {
	return errors.New(apperror.PublicMessage(err))
}
