package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Insights API",
        "description": "Performance analytics and risk classification for LMS students and classes.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Students",
            "description": "Per-student insights"
        },
        {
            "name": "Classes",
            "description": "Class summaries, at-risk listings and exports"
        },
        {
            "name": "Insights",
            "description": "Scoring service status"
        },
        {
            "name": "Observability",
            "description": "Probes and metrics"
        }
    ],
    "parameters": {
        "studentId": {
            "name": "studentId",
            "in": "path",
            "required": true,
            "type": "string"
        },
        "classId": {
            "name": "classId",
            "in": "path",
            "required": true,
            "type": "string"
        },
        "from": {
            "name": "from",
            "in": "query",
            "type": "string",
            "format": "date"
        },
        "to": {
            "name": "to",
            "in": "query",
            "type": "string",
            "format": "date"
        },
        "assignmentType": {
            "name": "assignment_type",
            "in": "query",
            "type": "string"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unavailable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Metrics summary",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/health": {
            "get": {
                "tags": [
                    "Insights"
                ],
                "summary": "Scoring service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/performance": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Student performance",
                "description": "Scores, grade and risk classification for one student.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/trends": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Performance trends",
                "description": "Per-topic trajectories and momentum.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/content-recommendations": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Content recommendations",
                "description": "Study content ranked by topic weakness.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    },
                    {
                        "name": "topic",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/learning-path": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Learning path",
                "description": "Ordered topic steps toward the target topics.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    },
                    {
                        "name": "topics",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated target topics"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/behavior": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Learning behaviour",
                "description": "Engagement and consistency patterns.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/predictions": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Outcome predictions",
                "description": "Projected scores and risk level.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/study-plan": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Study plan",
                "description": "Weekly plan built from weak topics.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/tutoring": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Tutoring recommendations",
                "description": "Tutoring focus areas and session cadence.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/adaptive-learning": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Adaptive learning",
                "description": "Difficulty adjustments per topic.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/students/{studentId}/comprehensive": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Comprehensive insights",
                "description": "Every student insight in one payload.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/studentId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/classes/{classId}/performance": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "Class performance",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/classId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/classes/{classId}/at-risk": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "At-risk students",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/classId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/classes/{classId}/at-risk/export": {
            "post": {
                "tags": [
                    "Classes"
                ],
                "summary": "Export the at-risk listing",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "$ref": "#/parameters/classId"
                    },
                    {
                        "$ref": "#/parameters/from"
                    },
                    {
                        "$ref": "#/parameters/to"
                    },
                    {
                        "$ref": "#/parameters/assignmentType"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ]
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No assessments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/insights/exports/download": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "Download an export",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "403": {
                        "description": "Invalid or expired token",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Export removed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseMeta": {
            "type": "object",
            "properties": {
                "source": {
                    "type": "string",
                    "enum": [
                        "remote",
                        "local"
                    ]
                },
                "cache_hit": {
                    "type": "boolean"
                },
                "processing_time_ms": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "$ref": "#/definitions/ResponseMeta"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
