// Package docs registra la definición OpenAPI del servicio en swag para
// que /swagger/doc.json la sirva. Mantener en sync con los godoc de
// internal/domain/pets/handler.go (swag init --dir cmd/shelter,internal).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/pets": {
            "get": {
                "summary": "Lista mascotas",
                "parameters": [
                    {"type": "string", "description": "orden, ej: name ASC", "name": "sort", "in": "query"},
                    {"type": "string", "description": "filtro exacto por nombre", "name": "name", "in": "query"},
                    {"type": "string", "description": "filtro exacto por raza", "name": "breed", "in": "query"},
                    {"type": "integer", "description": "0, 1 o 2", "name": "gender", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pets.petResponse"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "summary": "Crea una mascota",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.writeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/pets.fieldErrorResponse"}}
                }
            },
            "delete": {
                "summary": "Borra todas las mascotas",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.writeResponse"}}
                }
            }
        },
        "/pets/dummy": {
            "post": {
                "summary": "Inserta la mascota de ejemplo (Toto, Terrier)",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.writeResponse"}}
                }
            }
        },
        "/pets/changes": {
            "get": {
                "produces": ["text/event-stream"],
                "summary": "Stream (SSE) de identificadores que cambiaron",
                "responses": {}
            }
        },
        "/pets/{petID}": {
            "get": {
                "summary": "Devuelve una mascota",
                "parameters": [{"type": "integer", "description": "id", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "summary": "Actualiza solo los campos enviados",
                "parameters": [{"type": "integer", "description": "id", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.writeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pets.writeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/pets.fieldErrorResponse"}}
                }
            },
            "delete": {
                "summary": "Borra una mascota",
                "parameters": [{"type": "integer", "description": "id", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.writeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pets.writeResponse"}}
                }
            }
        }
    },
    "definitions": {
        "pets.petResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "breed": {"type": "string"},
                "gender": {"type": "integer", "enum": [0, 1, 2]},
                "gender_label": {"type": "string"},
                "weight": {"type": "integer"}
            }
        },
        "pets.writeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "uri": {"type": "string"},
                "rows": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "pets.fieldErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Shelter API",
	Description:      "Catálogo de mascotas del refugio sobre una tabla local.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
