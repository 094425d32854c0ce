package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

type gqlCtxKey string

const (
	gqlEmployeeIDKey gqlCtxKey = "employee_id"
	gqlRoleKey       gqlCtxKey = "role"
)

func gqlEmployeeID(ctx context.Context) string {
	id, _ := ctx.Value(gqlEmployeeIDKey).(string)
	return id
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	employeeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Employee",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"number":     &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"email":      &graphql.Field{Type: graphql.String},
			"position":   &graphql.Field{Type: graphql.String},
			"department": &graphql.Field{Type: graphql.String},
			"role":       &graphql.Field{Type: graphql.String},
			"active":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Zone",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"center":   &graphql.Field{Type: geoPointType},
			"radius_m": &graphql.Field{Type: graphql.Float},
			"active":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	attendanceDayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AttendanceDay",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"employee_id":    &graphql.Field{Type: graphql.String},
			"date":           &graphql.Field{Type: graphql.String},
			"check_in_at":    &graphql.Field{Type: graphql.String},
			"check_out_at":   &graphql.Field{Type: graphql.String},
			"status":         &graphql.Field{Type: graphql.String},
			"worked_seconds": &graphql.Field{Type: graphql.Int},
			"auto_closed":    &graphql.Field{Type: graphql.Boolean},
		},
	})

	requestType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Request",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"employee_id": &graphql.Field{Type: graphql.String},
			"kind":        &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.String},
			"reason":      &graphql.Field{Type: graphql.String},
			"days":        &graphql.Field{Type: graphql.Int},
			"minutes":     &graphql.Field{Type: graphql.Int},
		},
	})

	quotaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LeaveQuota",
		Fields: graphql.Fields{
			"year":           &graphql.Field{Type: graphql.Int},
			"quota_days":     &graphql.Field{Type: graphql.Int},
			"used_days":      &graphql.Field{Type: graphql.Int},
			"remaining_days": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:        employeeType,
				Description: "The authenticated employee",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Employees.GetByID(p.Context, gqlEmployeeID(p.Context))
				},
			},
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "All check-in zones in priority order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zones.List(p.Context)
				},
			},
			"holidays": &graphql.Field{
				Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
					Name: "Holiday",
					Fields: graphql.Fields{
						"id":   &graphql.Field{Type: graphql.String},
						"date": &graphql.Field{Type: graphql.String},
						"name": &graphql.Field{Type: graphql.String},
					},
				})),
				Description: "Holiday calendar for a year",
				Args: graphql.FieldConfigArgument{
					"year": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					year := p.Args["year"].(int)
					if year == 0 {
						year = time.Now().Year()
					}
					return deps.Holidays.ListYear(p.Context, year)
				},
			},
			"myAttendance": &graphql.Field{
				Type:        graphql.NewList(attendanceDayType),
				Description: "The caller's attendance days, newest first",
				Args: graphql.FieldConfigArgument{
					"days": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 31},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					days := p.Args["days"].(int)
					to := time.Now()
					return deps.Attendance.Days(p.Context, gqlEmployeeID(p.Context), to.AddDate(0, 0, -days), to)
				},
			},
			"myRequests": &graphql.Field{
				Type:        graphql.NewList(requestType),
				Description: "The caller's leave/overtime/adjustment requests",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Requests.ListByEmployee(p.Context, gqlEmployeeID(p.Context), p.Args["limit"].(int))
				},
			},
			"myQuota": &graphql.Field{
				Type:        quotaType,
				Description: "The caller's annual leave quota usage",
				Args: graphql.FieldConfigArgument{
					"year": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					year := p.Args["year"].(int)
					if year == 0 {
						year = time.Now().Year()
					}
					return deps.Requests.Quota(p.Context, gqlEmployeeID(p.Context), year)
				},
			},
			"employees": &graphql.Field{
				Type:        graphql.NewList(employeeType),
				Description: "All employees (admin only)",
				Args: graphql.FieldConfigArgument{
					"active": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if role, _ := p.Context.Value(gqlRoleKey).(string); role != "admin" {
						return nil, fmt.Errorf("admin role required")
					}
					return deps.Employees.List(p.Context, p.Args["active"].(bool))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint. It runs behind AuthRequired;
// the caller's identity is injected into the resolver context.
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		ctx := context.WithValue(c.Context(), gqlEmployeeIDKey, employeeID(c))
		role, _ := c.Locals(localRole).(string)
		ctx = context.WithValue(ctx, gqlRoleKey, role)

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
