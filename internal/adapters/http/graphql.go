package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/georef"
)

// buildSchema creates the GraphQL schema wired to our services.
// Object fields resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	sourcePointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SourcePoint",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoBounds",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	transformType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AffineTransform",
		Fields: graphql.Fields{
			"a": &graphql.Field{Type: graphql.Float},
			"b": &graphql.Field{Type: graphql.Float},
			"c": &graphql.Field{Type: graphql.Float},
			"d": &graphql.Field{Type: graphql.Float},
			"e": &graphql.Field{Type: graphql.Float},
			"f": &graphql.Field{Type: graphql.Float},
		},
	})

	placementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OverlayPlacement",
		Fields: graphql.Fields{
			"bounds":  &graphql.Field{Type: boundsType},
			"center":  &graphql.Field{Type: geoPointType},
			"opacity": &graphql.Field{Type: graphql.Float},
		},
	})

	alignmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Alignment",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"transform":       &graphql.Field{Type: transformType},
			"original_bounds": &graphql.Field{Type: boundsType},
			"placement":       &graphql.Field{Type: placementType},
			"fit_error_m":     &graphql.Field{Type: graphql.Float},
			"created_at":      &graphql.Field{Type: graphql.DateTime},
			"updated_at":      &graphql.Field{Type: graphql.DateTime},
		},
	})

	overlayHitType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OverlayHit",
		Fields: graphql.Fields{
			"alignment":            &graphql.Field{Type: alignmentType},
			"distance_to_center_m": &graphql.Field{Type: graphql.Float},
		},
	})

	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	floatArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"alignments": &graphql.Field{
				Type:        graphql.NewList(alignmentType),
				Description: "List all alignments",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alignments.List(p.Context)
				},
			},
			"alignment": &graphql.Field{
				Type:        alignmentType,
				Description: "Get an alignment by ID",
				Args:        graphql.FieldConfigArgument{"id": idArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alignments.Get(p.Context, p.Args["id"].(string))
				},
			},
			"overlaysContaining": &graphql.Field{
				Type:        graphql.NewList(overlayHitType),
				Description: "Overlays covering a location, nearest center first",
				Args: graphql.FieldConfigArgument{
					"lat":    floatArg,
					"lng":    floatArg,
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					g := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Alignments.Containing(p.Context, g, p.Args["radius"].(float64), p.Args["limit"].(int))
				},
			},
			"transformPoint": &graphql.Field{
				Type:        geoPointType,
				Description: "Project a page position through an alignment",
				Args:        graphql.FieldConfigArgument{"id": idArg, "x": floatArg, "y": floatArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sp := domain.SourcePoint{X: p.Args["x"].(float64), Y: p.Args["y"].(float64)}
					return deps.Alignments.Project(p.Context, p.Args["id"].(string), sp)
				},
			},
			"invertPoint": &graphql.Field{
				Type:        sourcePointType,
				Description: "Map a location back onto an alignment's page",
				Args:        graphql.FieldConfigArgument{"id": idArg, "lat": floatArg, "lng": floatArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					g := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Alignments.Unproject(p.Context, p.Args["id"].(string), g)
				},
			},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Great-circle distance in meters",
				Args: graphql.FieldConfigArgument{
					"lat1": floatArg, "lng1": floatArg,
					"lat2": floatArg, "lng2": floatArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					a := domain.GeoPoint{Lat: p.Args["lat1"].(float64), Lng: p.Args["lng1"].(float64)}
					b := domain.GeoPoint{Lat: p.Args["lat2"].(float64), Lng: p.Args["lng2"].(float64)}
					return georef.GreatCircleDistance(a, b), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"moveOverlay": &graphql.Field{
				Type:        alignmentType,
				Description: "Recenter an overlay",
				Args:        graphql.FieldConfigArgument{"id": idArg, "lat": floatArg, "lng": floatArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					g := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Alignments.Move(p.Context, p.Args["id"].(string), g)
				},
			},
			"setOpacity": &graphql.Field{
				Type:        alignmentType,
				Description: "Change an overlay's opacity",
				Args:        graphql.FieldConfigArgument{"id": idArg, "opacity": floatArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alignments.SetOpacity(p.Context, p.Args["id"].(string), p.Args["opacity"].(float64))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
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
			return errBadRequest(c, "invalid request body")
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
