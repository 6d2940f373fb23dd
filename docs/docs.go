// Package docs is generated by swag from the handler annotations. Regenerate with
// `swag init -g cmd/api/main.go`.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [{"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.User"}}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AuthResult"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}
            }
        },
        "/auth/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Refresh tokens",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AuthResult"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/telegram": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Telegram login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.TelegramLoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AuthResult"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}}, "401": {"description": "Unauthorized"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Update current user",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserUpdate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/tasks/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "boolean", "name": "status", "in": "query"},
                    {"type": "string", "name": "priority", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "integer", "name": "parent_id", "in": "query"},
                    {"type": "boolean", "name": "top_level", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Create task",
                "parameters": [{"in": "body", "name": "task", "required": true, "schema": {"$ref": "#/definitions/models.TaskCreate"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Task"}}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/tasks/export.pdf": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["Tasks"],
                "summary": "Export tasks as PDF",
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Get task",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Update task",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "task", "required": true, "schema": {"$ref": "#/definitions/models.TaskUpdate"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Tasks"],
                "summary": "Delete task",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/stats/overview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Stats"],
                "summary": "Task statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StatsOverview"}}}
            }
        },
        "/api/stats/weekly": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Stats"],
                "summary": "Weekly activity",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.WeeklyStats"}}}
            }
        },
        "/api/users/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.User"}}}, "403": {"description": "Forbidden"}}
            }
        },
        "/integrations/telegram/webhook": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Integrations"],
                "summary": "Telegram webhook",
                "parameters": [{"type": "string", "name": "X-Telegram-Bot-Api-Secret-Token", "in": "header"}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        }
    },
    "definitions": {
        "models.RegisterRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "email": {"type": "string"}, "telegram_id": {"type": "integer"}}
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "models.TelegramLoginRequest": {
            "type": "object",
            "required": ["init_data"],
            "properties": {"init_data": {"type": "string"}}
        },
        "models.UserUpdate": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"}, "telegram_id": {"type": "integer"}, "username": {"type": "string"},
                "email": {"type": "string"}, "is_active": {"type": "boolean"}, "is_admin": {"type": "boolean"},
                "created_at": {"type": "string"}, "updated_at": {"type": "string"}, "last_login": {"type": "string"}
            }
        },
        "services.AuthResult": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/models.User"},
                "access_token": {"type": "string"}, "refresh_token": {"type": "string"}, "token_type": {"type": "string"},
                "access_expires_at": {"type": "string"}, "refresh_expires_at": {"type": "string"}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"}, "user_id": {"type": "integer"}, "parent_task_id": {"type": "integer"},
                "title": {"type": "string"}, "description": {"type": "string"}, "date_time": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "normal", "high"]}, "status": {"type": "boolean"},
                "position": {"type": "integer"}, "category": {"type": "string"}, "tags": {"type": "array", "items": {"type": "string"}},
                "reminder_enabled": {"type": "boolean"}, "reminder_minutes_before": {"type": "integer"},
                "last_reminded_at": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}
            }
        },
        "models.TaskCreate": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"}, "description": {"type": "string"}, "date_time": {"type": "string"},
                "priority": {"type": "string"}, "position": {"type": "integer"}, "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}, "parent_task_id": {"type": "integer"},
                "reminder_enabled": {"type": "boolean"}, "reminder_minutes_before": {"type": "integer"}
            }
        },
        "models.TaskUpdate": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}, "description": {"type": "string"}, "date_time": {"type": "string"},
                "priority": {"type": "string"}, "status": {"type": "boolean"}, "position": {"type": "integer"},
                "category": {"type": "string"}, "tags": {"type": "array", "items": {"type": "string"}},
                "reminder_enabled": {"type": "boolean"}, "reminder_minutes_before": {"type": "integer"}
            }
        },
        "models.StatsOverview": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"}, "completed": {"type": "integer"}, "pending": {"type": "integer"},
                "today": {"type": "integer"}, "overdue": {"type": "integer"}, "completion_rate": {"type": "number"},
                "by_priority": {"type": "object", "additionalProperties": {"type": "integer"}},
                "by_category": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "models.WeeklyStats": {
            "type": "object",
            "properties": {
                "daily": {"type": "array", "items": {"type": "object", "properties": {"date": {"type": "string"}, "completed": {"type": "integer"}, "created": {"type": "integer"}}}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Vectora API",
	Description:      "Task manager backend with Telegram Mini-App login.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
