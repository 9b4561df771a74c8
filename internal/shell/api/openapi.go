package api

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	specOnce sync.Once
	specDoc  *openapi3.T
)

// handleOpenAPI serves the OpenAPI 3.0 document for the API.
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	specOnce.Do(func() {
		specDoc = buildOpenAPIDoc()
	})
	h.writeJSON(w, http.StatusOK, specDoc)
}

// buildOpenAPIDoc assembles the API document. The surface is small enough
// that hand-building beats reflective generation.
func buildOpenAPIDoc() *openapi3.T {
	violationSchema := openapi3.NewObjectSchema().
		WithProperty("rule", openapi3.NewStringSchema()).
		WithProperty("class", openapi3.NewStringSchema()).
		WithProperty("value", openapi3.NewStringSchema()).
		WithProperty("reason", openapi3.NewStringSchema())

	artifactSchema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("content", openapi3.NewStringSchema())

	runRequestSchema := openapi3.NewObjectSchema().
		WithProperty("environment", openapi3.NewStringSchema().WithEnum("dev", "prod")).
		WithProperty("inputs", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())).
		WithPropertyRef("templates", &openapi3.SchemaRef{
			Value: openapi3.NewArraySchema().WithItems(artifactSchema),
		})

	runResponseSchema := openapi3.NewObjectSchema().
		WithProperty("run_id", openapi3.NewUUIDSchema()).
		WithProperty("state", openapi3.NewStringSchema()).
		WithPropertyRef("artifacts", &openapi3.SchemaRef{
			Value: openapi3.NewArraySchema().WithItems(artifactSchema),
		}).
		WithPropertyRef("violations", &openapi3.SchemaRef{
			Value: openapi3.NewArraySchema().WithItems(violationSchema),
		})

	runBody := &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(runRequestSchema),
	}
	runResponses := openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("run outcome").
				WithJSONSchema(runResponseSchema),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "stackpact API",
			Version:     "1.0.0",
			Description: "Render and validate deployment artifacts against stack policy.",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/api/v1/render", &openapi3.PathItem{
				Post: &openapi3.Operation{
					OperationID: "renderArtifacts",
					Summary:     "Resolve identity and render artifacts",
					RequestBody: runBody,
					Responses:   runResponses,
				},
			}),
			openapi3.WithPath("/api/v1/validate", &openapi3.PathItem{
				Post: &openapi3.Operation{
					OperationID: "validateArtifacts",
					Summary:     "Validate rendered artifacts against stack policy",
					RequestBody: runBody,
					Responses:   runResponses,
				},
			}),
			openapi3.WithPath("/api/v1/runs", &openapi3.PathItem{
				Get: &openapi3.Operation{
					OperationID: "listRuns",
					Summary:     "List persisted runs for a stack",
					Parameters: openapi3.Parameters{
						&openapi3.ParameterRef{
							Value: openapi3.NewQueryParameter("stack").
								WithRequired(true).
								WithSchema(openapi3.NewStringSchema()),
						},
					},
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, &openapi3.ResponseRef{
							Value: openapi3.NewResponse().WithDescription("run history"),
						}),
					),
				},
			}),
		),
	}
	return doc
}
