package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GymPoint API",
        "description": "Gym management backend: members, plans, subscriptions, check-ins and help orders",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Staff accounts and authentication"},
        {"name": "Students", "description": "Member registry"},
        {"name": "Plans", "description": "Membership plan catalog"},
        {"name": "Subscriptions", "description": "Student enrollments"},
        {"name": "Check-ins", "description": "Gym visit tracking"},
        {"name": "Help Orders", "description": "Member questions and staff answers"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/users": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Create staff user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/User"}},
                    "400": {"description": "Validation fails", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["Sessions"],
                "summary": "Update the authenticated staff user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "401": {"description": "Password does not match", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Authenticate and obtain a token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Student"}}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Validation fails", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Student does not exist", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted"}
                }
            }
        },
        "/plans": {
            "get": {
                "tags": ["Plans"],
                "summary": "List plans",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Plan"}}}
                }
            },
            "post": {
                "tags": ["Plans"],
                "summary": "Create a plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Plan"}}
                }
            }
        },
        "/plans/{id}": {
            "get": {
                "tags": ["Plans"],
                "summary": "Get a plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Plan"}}
                }
            },
            "put": {
                "tags": ["Plans"],
                "summary": "Update a plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Plan"}}
                }
            },
            "delete": {
                "tags": ["Plans"],
                "summary": "Delete a plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "403": {"description": "Plan has students", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/subscriptions": {
            "get": {
                "tags": ["Subscriptions"],
                "summary": "List subscriptions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Subscription"}}}
                }
            },
            "post": {
                "tags": ["Subscriptions"],
                "summary": "Enroll a student on a plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubscriptionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Subscription"}},
                    "400": {"description": "Past dates are not allowed", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/subscriptions/export": {
            "get": {
                "tags": ["Subscriptions"],
                "summary": "Export the subscription report",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/subscriptions/{id}": {
            "get": {
                "tags": ["Subscriptions"],
                "summary": "Get a subscription",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Subscription"}}
                }
            },
            "put": {
                "tags": ["Subscriptions"],
                "summary": "Update a subscription",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubscriptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Subscription"}}
                }
            },
            "delete": {
                "tags": ["Subscriptions"],
                "summary": "Delete a subscription",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted"}
                }
            }
        },
        "/students/{id}/checkins": {
            "get": {
                "tags": ["Check-ins"],
                "summary": "List a student's visits",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/CheckIn"}}}
                }
            },
            "post": {
                "tags": ["Check-ins"],
                "summary": "Record a gym visit",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CheckIn"}},
                    "400": {"description": "Maximum number of check ins reached", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/students/{id}/help-orders": {
            "get": {
                "tags": ["Help Orders"],
                "summary": "List a student's questions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/HelpOrder"}}}
                }
            },
            "post": {
                "tags": ["Help Orders"],
                "summary": "File a question",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/HelpOrder"}}
                }
            }
        },
        "/help-orders": {
            "get": {
                "tags": ["Help Orders"],
                "summary": "List pending questions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/HelpOrder"}}}
                }
            }
        },
        "/help-orders/{id}": {
            "put": {
                "tags": ["Help Orders"],
                "summary": "Answer a question",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HelpOrder"}},
                    "400": {"description": "Help order already answered", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "old_password": {"type": "string", "minLength": 6},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SessionResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/User"},
                "token": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "StudentRequest": {
            "type": "object",
            "required": ["name", "email", "age", "height", "weight"],
            "properties": {
                "name": {"type": "string", "minLength": 5},
                "email": {"type": "string"},
                "age": {"type": "integer", "minimum": 10},
                "height": {"type": "number"},
                "weight": {"type": "number"}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "age": {"type": "integer"},
                "height": {"type": "number"},
                "weight": {"type": "number"}
            }
        },
        "PlanRequest": {
            "type": "object",
            "required": ["title", "duration"],
            "properties": {
                "title": {"type": "string", "minLength": 3},
                "duration": {"type": "integer", "minimum": 1},
                "price": {"type": "number", "minimum": 1}
            }
        },
        "Plan": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "duration": {"type": "integer"},
                "price": {"type": "number"}
            }
        },
        "SubscriptionRequest": {
            "type": "object",
            "required": ["student_id", "plan_id", "start_date"],
            "properties": {
                "student_id": {"type": "integer"},
                "plan_id": {"type": "integer"},
                "start_date": {"type": "string", "format": "date-time"}
            }
        },
        "Subscription": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "price": {"type": "number"},
                "active": {"type": "boolean"},
                "student": {"$ref": "#/definitions/Student"},
                "plan": {"$ref": "#/definitions/Plan"},
                "user": {"$ref": "#/definitions/User"}
            }
        },
        "CheckIn": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "student_id": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "AskRequest": {
            "type": "object",
            "required": ["question"],
            "properties": {
                "question": {"type": "string", "minLength": 3}
            }
        },
        "AnswerRequest": {
            "type": "object",
            "required": ["answer"],
            "properties": {
                "answer": {"type": "string"}
            }
        },
        "HelpOrder": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "student_id": {"type": "integer"},
                "question": {"type": "string"},
                "answer": {"type": "string"},
                "answer_at": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
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
