// Package docs holds the generated Swagger description of the backend API.
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
        "/health": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Health check",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/HealthResponse"
                        }
                    }
                },
                "description": "Reports that the server is running"
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Readiness check",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                },
                "description": "Reports whether the document store is reachable"
            }
        },
        "/tasks": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Get all tasks",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success"
                    }
                },
                "description": "Returns the device's tasks grouped by date"
            },
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Save all tasks",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "body",
                        "name": "tasks",
                        "required": true,
                        "description": "Tasks grouped by date",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                },
                "description": "Replaces the device's whole task document"
            }
        },
        "/tasks/{date}": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Get tasks for a date",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "required": true,
                        "description": "Date (YYYY-MM-DD)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success"
                    }
                }
            },
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Add or update a task",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "required": true,
                        "description": "Date (YYYY-MM-DD)"
                    },
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "description": "Task",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                },
                "description": "Upserts a task by id within the date bucket; assigns an id when absent"
            }
        },
        "/tasks/{date}/{id}": {
            "delete": {
                "tags": [
                    "tasks"
                ],
                "summary": "Delete a task",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "required": true,
                        "description": "Date (YYYY-MM-DD)"
                    },
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Task id"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    }
                }
            }
        },
        "/notes": {
            "get": {
                "tags": [
                    "notes"
                ],
                "summary": "Get all notes",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success"
                    }
                }
            },
            "post": {
                "tags": [
                    "notes"
                ],
                "summary": "Add or update a note",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "body",
                        "name": "note",
                        "required": true,
                        "description": "Note",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                },
                "description": "Upserts a note by id; assigns id and createdAt when absent"
            }
        },
        "/notes/{id}": {
            "delete": {
                "tags": [
                    "notes"
                ],
                "summary": "Delete a note",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Note id"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    }
                }
            }
        },
        "/projects": {
            "get": {
                "tags": [
                    "projects"
                ],
                "summary": "Get all projects",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success"
                    }
                }
            },
            "post": {
                "tags": [
                    "projects"
                ],
                "summary": "Save all projects",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "body",
                        "name": "projects",
                        "required": true,
                        "description": "Projects",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    }
                },
                "description": "Replaces the device's project list; a body that is not a list stores an empty list"
            }
        },
        "/projects/{id}": {
            "get": {
                "tags": [
                    "projects"
                ],
                "summary": "Get project by ID",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Project id"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success"
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "projects"
                ],
                "summary": "Add or update a project",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Project id"
                    },
                    {
                        "in": "body",
                        "name": "project",
                        "required": true,
                        "description": "Project",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                },
                "description": "Upserts a project by id; assigns id and createdAt when absent"
            },
            "delete": {
                "tags": [
                    "projects"
                ],
                "summary": "Delete a project",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true,
                        "description": "Project id"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    }
                }
            }
        },
        "/preferences": {
            "get": {
                "tags": [
                    "preferences"
                ],
                "summary": "Get preferences",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success"
                    }
                }
            },
            "post": {
                "tags": [
                    "preferences"
                ],
                "summary": "Save preferences",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Device-Id",
                        "type": "string",
                        "required": false,
                        "description": "Device id"
                    },
                    {
                        "in": "query",
                        "name": "deviceId",
                        "type": "string",
                        "required": false,
                        "description": "Device id when the header is absent"
                    },
                    {
                        "in": "body",
                        "name": "preferences",
                        "required": true,
                        "description": "Preferences",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                },
                "description": "Replaces the device's preference object"
            }
        }
    },
    "definitions": {
        "HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "task": {
                    "type": "object"
                },
                "note": {
                    "type": "object"
                },
                "project": {
                    "type": "object"
                }
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "details": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Day Planner API",
	Description:      "Per-device document storage for tasks, notes, projects and preferences",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
