// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the @Router annotations on the handlers.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "CronSecret": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register an account on a free trial",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Email already registered"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/refresh": {
            "post": {"tags": ["Auth"], "summary": "Exchange a refresh token", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid refresh token"}}}
        },
        "/auth/session": {
            "get": {"tags": ["Auth"], "summary": "Current account", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/usage": {
            "get": {"tags": ["Posts"], "summary": "Posts used against the plan allowance", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "Post history, newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Posts"],
                "summary": "Submit a post",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreatePostRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Locked, add-on missing or post limit reached"},
                    "412": {"description": "No posting profile"},
                    "502": {"description": "Posting provider failed"}
                }
            }
        },
        "/billing/plans": {
            "get": {"tags": ["Billing"], "summary": "Plans and add-ons", "responses": {"200": {"description": "OK"}}}
        },
        "/billing/checkout": {
            "post": {
                "tags": ["Billing"],
                "summary": "Open a hosted checkout",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CheckoutRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Unknown plan or add-on"}}
            }
        },
        "/billing/portal": {
            "post": {"tags": ["Billing"], "summary": "Open the billing portal", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "412": {"description": "No billing customer"}}}
        },
        "/billing/subscription": {
            "get": {"tags": ["Billing"], "summary": "Subscription summary", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/profiles": {
            "post": {"tags": ["Profiles"], "summary": "Create the posting profile", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Profile exists"}}}
        },
        "/profiles/accounts": {
            "get": {"tags": ["Profiles"], "summary": "Connected social accounts", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/profiles/invites": {
            "post": {"tags": ["Profiles"], "summary": "Connection links per platform", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/profiles/status": {
            "get": {"tags": ["Profiles"], "summary": "Connection status per platform", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-platform analytics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "platform", "type": "string"},
                    {"in": "query", "name": "start", "type": "string", "format": "date-time"},
                    {"in": "query", "name": "end", "type": "string", "format": "date-time"}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Analytics add-on required"}}
            }
        },
        "/analytics/overview": {
            "get": {"tags": ["Analytics"], "summary": "Thirty day totals", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8, "maxLength": 72}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "CreatePostRequest": {
            "type": "object",
            "required": ["content", "platforms"],
            "properties": {
                "content": {"type": "string", "maxLength": 10000},
                "platforms": {"type": "array", "items": {"type": "string", "enum": ["instagram", "tiktok", "x", "facebook", "youtube", "linkedin", "threads", "pinterest", "reddit", "bluesky"]}},
                "scheduled_at": {"type": "string", "format": "date-time"},
                "use_queue": {"type": "boolean"},
                "media_urls": {"type": "array", "items": {"type": "string"}},
                "platform_specific_data": {"type": "object"}
            }
        },
        "CheckoutRequest": {
            "type": "object",
            "required": ["plan"],
            "properties": {
                "plan": {"type": "string", "enum": ["essentials", "pro", "business"]},
                "addons": {"type": "array", "items": {"type": "string", "enum": ["reddit", "linkedin", "analytics"]}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pulse Social API",
	Description:      "Multi-platform social posting with usage-limited plans.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
