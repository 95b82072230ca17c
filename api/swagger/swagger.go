package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CrediLocker API",
        "description": "Academic record tracker for Field Project, CEP and Co-Curricular tracks",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Student and teacher login"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Teachers", "description": "Teacher account management"},
        {"name": "FieldProject", "description": "Field Project document slots"},
        {"name": "CEP", "description": "Community Engagement Program"},
        {"name": "Activities", "description": "Co-curricular activities and attendance"},
        {"name": "Reports", "description": "Class report generation"},
        {"name": "Dashboard", "description": "Teacher landing-page aggregates"}
    ],
    "paths": {
        "/auth/student/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/teacher/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/pages": {
            "get": {
                "tags": ["Authentication"],
                "summary": "List accessible pages",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "class", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{uid}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Remove student",
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students/promote": {
            "post": {
                "tags": ["Students"],
                "summary": "Promote a class to a new semester",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PromoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/field-project/documents/{type}": {
            "post": {
                "tags": ["FieldProject"],
                "summary": "Upload a document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string", "enum": ["completion_letter", "outcome_form", "feedback_form", "video_presentation"]},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["FieldProject"],
                "summary": "Remove an uploaded document",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/field-project/me": {
            "get": {
                "tags": ["FieldProject"],
                "summary": "Get own document checklist",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/field-project/review/{class}": {
            "get": {
                "tags": ["FieldProject"],
                "summary": "Review a class's uploads",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/field-project/evaluate": {
            "post": {
                "tags": ["FieldProject"],
                "summary": "Evaluate a student's Field Project",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FieldProjectEvaluationInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cep/requirements": {
            "get": {
                "tags": ["CEP"],
                "summary": "List requirements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["CEP"],
                "summary": "Publish a class requirement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CEPRequirementInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cep/submissions": {
            "post": {
                "tags": ["CEP"],
                "summary": "Log a CEP activity",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "activity_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "hours", "in": "formData", "required": true, "type": "number"},
                    {"name": "activity_date", "in": "formData", "required": true, "type": "string"},
                    {"name": "location", "in": "formData", "type": "string"},
                    {"name": "geolocation", "in": "formData", "type": "string"},
                    {"name": "certificate", "in": "formData", "required": true, "type": "file"},
                    {"name": "picture", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Deadline passed"}
                }
            }
        },
        "/cep/me": {
            "get": {
                "tags": ["CEP"],
                "summary": "Get own CEP progress",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cep/review/{class}": {
            "get": {
                "tags": ["CEP"],
                "summary": "Review a class's submissions",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cep/evaluate": {
            "post": {
                "tags": ["CEP"],
                "summary": "Evaluate a student's CEP record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CEPEvaluationInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Publish activity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivityInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/{id}/attendance": {
            "get": {
                "tags": ["Activities"],
                "summary": "List attendance for an activity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Mark attendance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/me": {
            "get": {
                "tags": ["Activities"],
                "summary": "Get own attendance history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{track}": {
            "post": {
                "tags": ["Reports"],
                "summary": "Generate a class report",
                "parameters": [
                    {"name": "track", "in": "path", "required": true, "type": "string", "enum": ["field-project", "cep", "attendance"]},
                    {"name": "class", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a generated report",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid token"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get per-class dashboard",
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentLoginRequest": {
            "type": "object",
            "properties": {
                "uid": {"type": "string"},
                "email": {"type": "string"}
            },
            "required": ["uid", "email"]
        },
        "TeacherLoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "StudentInput": {
            "type": "object",
            "properties": {
                "uid": {"type": "string"},
                "name": {"type": "string"},
                "class": {"type": "string"},
                "semester": {"type": "integer"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            },
            "required": ["uid", "name", "class", "email"]
        },
        "PromoteRequest": {
            "type": "object",
            "properties": {
                "class": {"type": "string"},
                "semester": {"type": "integer"}
            },
            "required": ["class", "semester"]
        },
        "ActivityInput": {
            "type": "object",
            "properties": {
                "activity_name": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "venue": {"type": "string"},
                "assigned_class": {"type": "array", "items": {"type": "string"}},
                "comments": {"type": "string"},
                "cc_points": {"type": "integer"}
            },
            "required": ["activity_name", "date", "assigned_class"]
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "marks": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "student_uid": {"type": "string"},
                            "status": {"type": "string", "enum": ["present", "absent"]}
                        }
                    }
                }
            }
        },
        "CEPRequirementInput": {
            "type": "object",
            "properties": {
                "assigned_class": {"type": "string"},
                "minimum_hours": {"type": "number"},
                "deadline": {"type": "string"},
                "credits_config": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "hours": {"type": "number"},
                            "credits": {"type": "integer"}
                        }
                    }
                }
            },
            "required": ["assigned_class", "minimum_hours", "deadline", "credits_config"]
        },
        "CEPEvaluationInput": {
            "type": "object",
            "properties": {
                "student_uid": {"type": "string"},
                "class": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "notes": {"type": "string"}
            },
            "required": ["student_uid", "class", "status"]
        },
        "FieldProjectEvaluationInput": {
            "type": "object",
            "properties": {
                "student_uid": {"type": "string"},
                "class": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "marks": {"type": "integer"},
                "credits": {"type": "integer"},
                "notes": {"type": "string"}
            },
            "required": ["student_uid", "class", "status"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
