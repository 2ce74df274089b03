// Package docs serves the OpenAPI description of the names API.
package docs

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

const (
	apiTitle       = "Names API"
	apiVersion     = "0.1"
	apiDescription = "A REST API serving a names data structure"
)

// Handler serves a pre-rendered OpenAPI document.
type Handler struct {
	document []byte
}

// New renders the document once; it never changes at runtime.
func New() (*Handler, error) {
	document, err := json.Marshal(Document())
	if err != nil {
		return nil, err
	}
	return &Handler{document: document}, nil
}

// RegisterRoutes 注册文档路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/spec", h.handleSpec)
}

func (h *Handler) handleSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.document); err != nil {
		log.Printf("[docs] write failed: %v", err)
	}
}

// Document describes the /api/names resource.
func Document() *openapi3.T {
	record := openapi3.NewObjectSchema().
		WithProperty("lname", openapi3.NewStringSchema()).
		WithProperty("fname", openapi3.NewStringSchema()).
		WithProperty("timestamp", openapi3.NewStringSchema().WithPattern(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`))
	record.Required = []string{"lname", "fname", "timestamp"}

	createBody := openapi3.NewObjectSchema().
		WithProperty("lname", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("fname", openapi3.NewStringSchema())
	createBody.Required = []string{"lname", "fname"}

	updateBody := openapi3.NewObjectSchema().
		WithProperty("lname", openapi3.NewStringSchema()).
		WithProperty("fname", openapi3.NewStringSchema())

	errorBody := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema())

	lastName := openapi3.NewPathParameter("lastName").
		WithDescription("The last name of the name record").
		WithSchema(openapi3.NewStringSchema())

	errorResponse := func(description string) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(errorBody)}
	}
	recordResponse := func(description string) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(record)}
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       apiTitle,
			Version:     apiVersion,
			Description: apiDescription,
		},
		Paths: openapi3.Paths{
			"/api/names": &openapi3.PathItem{
				Get: &openapi3.Operation{
					OperationID: "listNames",
					Summary:     "Get the entire list of names",
					Responses: openapi3.Responses{
						"200": &openapi3.ResponseRef{Value: openapi3.NewResponse().
							WithDescription("Retrieved the entire names list").
							WithJSONSchema(openapi3.NewArraySchema().WithItems(record))},
					},
				},
				Post: &openapi3.Operation{
					OperationID: "createName",
					Summary:     "Create or replace a name record",
					RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
						WithRequired(true).
						WithJSONSchema(createBody)},
					Responses: openapi3.Responses{
						"201": recordResponse("Created the new name record"),
						"400": errorResponse("Invalid input"),
					},
				},
			},
			"/api/names/{lastName}": &openapi3.PathItem{
				Parameters: openapi3.Parameters{{Value: lastName}},
				Get: &openapi3.Operation{
					OperationID: "getName",
					Summary:     "Get a particular name record",
					Responses: openapi3.Responses{
						"200": recordResponse("Retrieved the requested name"),
						"404": errorResponse("Not found"),
					},
				},
				Put: &openapi3.Operation{
					OperationID: "updateName",
					Summary:     "Update a name record",
					RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
						WithRequired(true).
						WithJSONSchema(updateBody)},
					Responses: openapi3.Responses{
						"201": recordResponse("Name record updated"),
						"400": errorResponse("Invalid input"),
						"404": errorResponse("Not found"),
					},
				},
				Delete: &openapi3.Operation{
					OperationID: "deleteName",
					Summary:     "Delete a name record",
					Responses: openapi3.Responses{
						"204": &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Name record deleted")},
						"404": errorResponse("Not found"),
					},
				},
			},
		},
	}
}
