// Package docs registers the OpenAPI description served under /swagger/ when
// the server is built with -tags=swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {"get": {"summary": "Cache status", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
        "/stats": {"get": {"summary": "Cache statistics", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PerformanceStats"}}}}},
        "/config": {"patch": {"summary": "Update cache configuration", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ConfigPatch"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/scenes/warm": {
            "get": {"summary": "List warm scenes", "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Warm a scene", "consumes": ["application/json"],
                "parameters": [{"in": "query", "name": "async", "type": "string", "description": "1 to run in the background"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.WarmRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WarmSceneStatus"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.OperationResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Render slots busy", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Toolset load failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/scenes/warm/{id}": {
            "get": {"summary": "Get a warm scene", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WarmSceneStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}},
            "delete": {"summary": "Unwarm a scene", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}}},
        "/scenes/{id}/preload": {"post": {"summary": "Preload scenes near a scene", "consumes": ["application/json"],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"},
                {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.PreloadRequest"}}],
            "responses": {"200": {"description": "OK"}}}},
        "/decks/{id}/preload": {"post": {"summary": "Preload a deck", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}}}},
        "/toolsets": {"get": {"summary": "List toolsets", "responses": {"200": {"description": "OK"}}}},
        "/toolsets/{key}/load": {"post": {"summary": "Load a toolset", "parameters": [{"in": "path", "name": "key", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ToolsetInfo"}},
                "404": {"description": "Unknown toolset", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "502": {"description": "Load failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/toolsets/{key}": {"delete": {"summary": "Unload a toolset", "parameters": [{"in": "path", "name": "key", "required": true, "type": "string"}],
            "responses": {"204": {"description": "No Content"}}}},
        "/toolsets/events": {"get": {"summary": "Stream toolset state", "produces": ["text/event-stream"],
            "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "types.Scene": {"type": "object", "properties": {
            "id": {"type": "string", "example": "intro-graph"}, "name": {"type": "string"},
            "type": {"type": "string", "example": "graph"}, "deck_ids": {"type": "array", "items": {"type": "string"}}}},
        "types.WarmRequest": {"type": "object", "properties": {
            "scene_id": {"type": "string", "example": "intro-graph"}, "scene": {"$ref": "#/definitions/types.Scene"}}},
        "types.PreloadRequest": {"type": "object", "properties": {
            "nearby": {"type": "array", "items": {"type": "string"}}, "deck_id": {"type": "string"}}},
        "types.ConfigPatch": {"type": "object", "properties": {
            "max_warm_scenes": {"type": "integer", "example": 10}, "warm_ttl_seconds": {"type": "integer", "example": 300},
            "preload_strategy": {"type": "string", "example": "proximity"}}},
        "types.WarmSceneStatus": {"type": "object", "properties": {
            "scene_id": {"type": "string"}, "type": {"type": "string"}, "render_state": {"type": "string"},
            "last_accessed_unix": {"type": "integer"}, "warm_until_unix": {"type": "integer"}, "rendered_bytes": {"type": "integer"}}},
        "types.PerformanceStats": {"type": "object", "properties": {
            "total_warm_scenes": {"type": "integer"}, "memory_usage": {"type": "integer"}, "rendered_bytes": {"type": "integer"},
            "average_age_ms": {"type": "integer"}, "by_state": {"type": "object", "additionalProperties": {"type": "integer"}},
            "max_warm_scenes": {"type": "integer"}}},
        "types.ToolsetInfo": {"type": "object", "properties": {
            "key": {"type": "string"}, "libraries": {"type": "array", "items": {"type": "string"}},
            "css": {"type": "array", "items": {"type": "string"}}, "preload": {"type": "boolean"}, "state": {"type": "string"}}},
        "types.StatusResponse": {"type": "object", "properties": {
            "state": {"type": "string"}, "scenes": {"type": "array", "items": {"$ref": "#/definitions/types.WarmSceneStatus"}},
            "max_warm_scenes": {"type": "integer"}, "warm_ttl_seconds": {"type": "integer"}, "preload_strategy": {"type": "string"},
            "warms_in_progress": {"type": "integer"}, "renders_in_flight": {"type": "integer"}, "evictions_total": {"type": "integer"}, "warms_total": {"type": "integer"},
            "uptime_seconds": {"type": "integer"}, "last_error": {"type": "string"}}},
        "types.OperationResponse": {"type": "object", "properties": {"op_id": {"type": "string"}}},
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "scened API",
	Description:      "HTTP API for the scene performance cache.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
