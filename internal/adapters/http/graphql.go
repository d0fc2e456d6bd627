package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/core/usecases"
)

// jsonScalar passes free-form property maps through unchanged.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:         "JSON",
	Description:  "Arbitrary JSON value",
	Serialize:    func(v interface{}) interface{} { return v },
	ParseValue:   func(v interface{}) interface{} { return v },
	ParseLiteral: func(ast.Value) interface{} { return nil },
})

// buildSchema creates the GraphQL schema wired to the map object service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	geometryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PointGeometry",
		Fields: graphql.Fields{
			"type": &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{
				Type: graphql.NewList(graphql.Float),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					g, ok := p.Source.(domain.PointGeometry)
					if !ok {
						return nil, nil
					}
					return []float64{g.Coordinates[0], g.Coordinates[1]}, nil
				},
			},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"type":       &graphql.Field{Type: graphql.String},
			"geometry":   &graphql.Field{Type: geometryType},
			"properties": &graphql.Field{Type: jsonScalar},
		},
	})

	collectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeatureCollection",
		Fields: graphql.Fields{
			"type":     &graphql.Field{Type: graphql.String},
			"features": &graphql.Field{Type: graphql.NewList(featureType)},
		},
	})

	mapObjectType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapObject",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"objectType": &graphql.Field{Type: graphql.String},
			"uid":        &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: geoPointType},
			"properties": &graphql.Field{Type: jsonScalar},
			"stale":      &graphql.Field{Type: graphql.Boolean},
			"updatedAt":  &graphql.Field{Type: graphql.DateTime},
			"createdAt":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"mapObjects": &graphql.Field{
				Type:        collectionType,
				Description: "Visible map objects inside a bounding box",
				Args: graphql.FieldConfigArgument{
					"bbox": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"zoom": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var q usecases.BBoxQuery
					if z, ok := p.Args["zoom"].(int); ok {
						q.Zoom = &z
					}
					b, err := domain.ParseBounds(p.Args["bbox"].(string))
					if err != nil && !q.Gated() {
						return nil, err
					}
					q.Bounds = b
					return deps.MapObjects.FindInBounds(p.Context, q)
				},
			},
			"mapObjectsNear": &graphql.Field{
				Type:        collectionType,
				Description: "Visible map objects within a radius (meters) of a point, nearest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"zoom":   &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					radius := p.Args["radius"].(float64)
					var zoom *int
					if z, ok := p.Args["zoom"].(int); ok {
						zoom = &z
					}
					return deps.MapObjects.FindNear(p.Context, center, radius, zoom)
				},
			},
			"mapObject": &graphql.Field{
				Type:        mapObjectType,
				Description: "Get a map object by uid",
				Args: graphql.FieldConfigArgument{
					"uid": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					obj, err := deps.MapObjects.GetByUID(p.Context, p.Args["uid"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					return obj, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "graphql", "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
