// Package docs holds the OpenAPI document served under /swagger when the
// server is built with -tags=swagger. Regenerate with
// `swag init -g cmd/predictord/docs.go -o internal/httpapi/docs` after
// changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "predictord maintainers"},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/predict": {
            "post": {
                "description": "Score one request. Requests are batched with concurrent callers; the result holds only this request's rows.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict",
                "parameters": [
                    {
                        "description": "prediction request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.PredictionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictionResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.PredictionResult"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.PredictionResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.PredictionResult"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.PredictionResult"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.PredictionResult"}}
                }
            }
        },
        "/model": {
            "get": {
                "produces": ["application/json"],
                "tags": ["model"],
                "summary": "Model info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Engine status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.Tensor": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "user_dense"},
                "kind": {"type": "string", "enum": ["dense", "sparse"], "example": "dense"},
                "dim": {"type": "integer", "example": 4},
                "values": {"type": "array", "items": {"type": "number"}},
                "ids": {"type": "array", "items": {"type": "integer"}},
                "lengths": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "types.PredictionRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "req-42"},
                "batch_size": {"type": "integer", "example": 1},
                "inputs": {"type": "array", "items": {"$ref": "#/definitions/types.Tensor"}}
            }
        },
        "types.PredictionResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "req-42"},
                "outputs": {"type": "array", "items": {"$ref": "#/definitions/types.Tensor"}},
                "status": {"type": "string", "example": "ok"},
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.FeatureSpec": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "kind": {"type": "string"},
                "dim": {"type": "integer"},
                "cardinality": {"type": "integer"}
            }
        },
        "types.OutputSpec": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "dim": {"type": "integer"}
            }
        },
        "types.Signature": {
            "type": "object",
            "properties": {
                "inputs": {"type": "array", "items": {"$ref": "#/definitions/types.FeatureSpec"}},
                "outputs": {"type": "array", "items": {"$ref": "#/definitions/types.OutputSpec"}}
            }
        },
        "types.ModelInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "dlrm-small"},
                "version": {"type": "string", "example": "3"},
                "format": {"type": "string", "example": "native"},
                "path": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "max_concurrency": {"type": "integer", "example": 2},
                "signature": {"$ref": "#/definitions/types.Signature"}
            }
        },
        "types.ModelResponse": {
            "type": "object",
            "properties": {
                "model": {"$ref": "#/definitions/types.ModelInfo"}
            }
        },
        "types.BatchingStatus": {
            "type": "object",
            "properties": {
                "max_batch_size": {"type": "integer", "example": 64},
                "max_batch_rows": {"type": "integer", "example": 0},
                "max_wait_ms": {"type": "number", "example": 2},
                "queue_timeout_ms": {"type": "number", "example": 0},
                "max_outstanding": {"type": "integer", "example": 1024},
                "dispatchers": {"type": "integer", "example": 2},
                "max_concurrency": {"type": "integer", "example": 1}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "model": {"$ref": "#/definitions/types.ModelInfo"},
                "batching": {"$ref": "#/definitions/types.BatchingStatus"},
                "pending": {"type": "integer", "example": 3},
                "outstanding": {"type": "integer", "example": 7},
                "inflight_executions": {"type": "integer", "example": 1},
                "batches_total": {"type": "integer", "example": 1200},
                "succeeded_total": {"type": "integer", "example": 9000},
                "failed_total": {"type": "integer", "example": 3},
                "rejected_total": {"type": "integer", "example": 0},
                "last_error": {"type": "string"},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "server_time_unix": {"type": "integer", "example": 1700000000}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "predictord API",
	Description:      "HTTP API for batched model inference.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
