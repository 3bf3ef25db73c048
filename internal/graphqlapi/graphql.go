// Package graphqlapi serves a read-only GraphQL view over the audit log
// and the loaded model identity.
package graphqlapi

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"

	"github.com/oremus-labs/ol-housing-predictor/internal/inference"
	"github.com/oremus-labs/ol-housing-predictor/internal/store"
)

// AuditProvider exposes read-only audit log access.
type AuditProvider interface {
	QueryStats(start, end string) (*store.Stats, error)
	RecentRecords(limit int) ([]store.Record, error)
}

// ModelProvider reports the model identity bound at startup.
type ModelProvider interface {
	Identity() inference.ModelIdentity
}

// Config wires the GraphQL schema.
type Config struct {
	Audit AuditProvider
	Model ModelProvider
}

// NewHandler returns an http.Handler that serves /graphql requests.
func NewHandler(cfg Config) (http.Handler, error) {
	builder := schemaBuilder{cfg: cfg}
	schema, err := builder.buildSchema()
	if err != nil {
		return nil, err
	}

	return handler.New(&handler.Config{
		Schema:   schema,
		Pretty:   true,
		GraphiQL: true,
	}), nil
}

type schemaBuilder struct {
	cfg Config
}

func (b schemaBuilder) buildSchema() (*graphql.Schema, error) {
	versionUsageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VersionUsage",
		Fields: graphql.Fields{
			"version": {Type: graphql.NewNonNull(graphql.String)},
			"count":   {Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PredictionStats",
		Fields: graphql.Fields{
			"start":               {Type: graphql.NewNonNull(graphql.String)},
			"end":                 {Type: graphql.NewNonNull(graphql.String)},
			"totalRequests":       {Type: graphql.NewNonNull(graphql.Int)},
			"success200":          {Type: graphql.NewNonNull(graphql.Int)},
			"badRequest400":       {Type: graphql.NewNonNull(graphql.Int)},
			"validationErrors422": {Type: graphql.NewNonNull(graphql.Int)},
			"internalErrors500":   {Type: graphql.NewNonNull(graphql.Int)},
			"avgPredictedPrice":   {Type: graphql.Float},
			"modelVersionUsage":   {Type: graphql.NewList(versionUsageType)},
		},
	})

	recordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuditRecord",
		Fields: graphql.Fields{
			"id":             {Type: graphql.NewNonNull(graphql.ID)},
			"timestamp":      {Type: graphql.NewNonNull(graphql.String)},
			"inputJson":      {Type: graphql.String},
			"predictionJson": {Type: graphql.String},
			"statusCode":     {Type: graphql.NewNonNull(graphql.Int)},
			"errorMessage":   {Type: graphql.String},
			"modelType":      {Type: graphql.String},
			"modelVersion":   {Type: graphql.String},
		},
	})

	modelInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ModelInfo",
		Fields: graphql.Fields{
			"type":    {Type: graphql.NewNonNull(graphql.String)},
			"version": {Type: graphql.NewNonNull(graphql.String)},
		},
	})

	queryFields := graphql.Fields{
		"stats": {
			Type: statsType,
			Args: graphql.FieldConfigArgument{
				"start": {Type: graphql.String},
				"end":   {Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if b.cfg.Audit == nil {
					return nil, nil
				}
				start, _ := p.Args["start"].(string)
				end, _ := p.Args["end"].(string)
				stats, err := b.cfg.Audit.QueryStats(start, end)
				if err != nil {
					return nil, err
				}
				return mapStats(stats), nil
			},
		},
		"records": {
			Type: graphql.NewList(recordType),
			Args: graphql.FieldConfigArgument{
				"limit": {Type: graphql.Int},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if b.cfg.Audit == nil {
					return []interface{}{}, nil
				}
				limit := 25
				if l, ok := p.Args["limit"].(int); ok && l > 0 {
					limit = l
				}
				records, err := b.cfg.Audit.RecentRecords(limit)
				if err != nil {
					return nil, err
				}
				return mapRecords(records), nil
			},
		},
		"modelInfo": {
			Type: modelInfoType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if b.cfg.Model == nil {
					return nil, nil
				}
				identity := b.cfg.Model.Identity()
				return map[string]interface{}{
					"type":    identity.Type,
					"version": identity.Version,
				}, nil
			},
		},
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	})
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func mapStats(stats *store.Stats) map[string]interface{} {
	if stats == nil {
		return nil
	}
	usage := make([]map[string]interface{}, 0, len(stats.ModelVersionUsage))
	for version, count := range stats.ModelVersionUsage {
		usage = append(usage, map[string]interface{}{
			"version": version,
			"count":   count,
		})
	}
	out := map[string]interface{}{
		"start":               stats.Start,
		"end":                 stats.End,
		"totalRequests":       stats.TotalRequests,
		"success200":          stats.Success200,
		"badRequest400":       stats.BadRequest400,
		"validationErrors422": stats.ValidationErrors422,
		"internalErrors500":   stats.InternalErrors500,
		"modelVersionUsage":   usage,
	}
	if stats.AvgPredictedPrice != nil {
		out["avgPredictedPrice"] = *stats.AvgPredictedPrice
	}
	return out
}

func mapRecords(records []store.Record) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]interface{}{
			"id":             r.ID,
			"timestamp":      r.Timestamp,
			"inputJson":      r.InputJSON,
			"predictionJson": r.PredictionJSON,
			"statusCode":     r.StatusCode,
			"errorMessage":   r.ErrorMessage,
			"modelType":      r.ModelType,
			"modelVersion":   r.ModelVersion,
		})
	}
	return out
}
