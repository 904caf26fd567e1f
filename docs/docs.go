// Package docs holds the OpenAPI description served by the Swagger UI.
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
		"/api/v1/companies": {
			"get": {
				"tags": [
					"companies"
				],
				"summary": "List companies",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "page",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "limit",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "search",
						"in": "query",
						"type": "string"
					},
					{
						"name": "sort",
						"in": "query",
						"type": "string",
						"description": "comma separated, leading - for descending"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/page.Company"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"post": {
				"tags": [
					"companies"
				],
				"summary": "Create company",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.Company"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/model.Company"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/companies/{id}": {
			"get": {
				"tags": [
					"companies"
				],
				"summary": "Get company",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Company"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"put": {
				"tags": [
					"companies"
				],
				"summary": "Update company fields",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Company"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"patch": {
				"tags": [
					"companies"
				],
				"summary": "Update company fields",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Company"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"companies"
				],
				"summary": "Delete company",
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/jobs": {
			"get": {
				"tags": [
					"jobs"
				],
				"summary": "List jobs",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "page",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "limit",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "search",
						"in": "query",
						"type": "string"
					},
					{
						"name": "sort",
						"in": "query",
						"type": "string",
						"description": "comma separated, leading - for descending"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/page.Job"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"post": {
				"tags": [
					"jobs"
				],
				"summary": "Create job",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.Job"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/model.Job"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/jobs/{id}": {
			"get": {
				"tags": [
					"jobs"
				],
				"summary": "Get job",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Job"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"put": {
				"tags": [
					"jobs"
				],
				"summary": "Update job fields",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Job"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"patch": {
				"tags": [
					"jobs"
				],
				"summary": "Update job fields",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Job"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"jobs"
				],
				"summary": "Delete job",
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/applications": {
			"get": {
				"tags": [
					"applications"
				],
				"summary": "List applications",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "page",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "limit",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "search",
						"in": "query",
						"type": "string"
					},
					{
						"name": "sort",
						"in": "query",
						"type": "string",
						"description": "comma separated, leading - for descending"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/page.Application"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"post": {
				"tags": [
					"applications"
				],
				"summary": "Create application",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/model.Application"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/model.Application"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/applications/{id}": {
			"get": {
				"tags": [
					"applications"
				],
				"summary": "Get application",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Application"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"put": {
				"tags": [
					"applications"
				],
				"summary": "Update application fields",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Application"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"patch": {
				"tags": [
					"applications"
				],
				"summary": "Update application fields",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Application"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"applications"
				],
				"summary": "Delete application",
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/companies/{id}/jobs": {
			"get": {
				"tags": [
					"jobs"
				],
				"summary": "List jobs of a company",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "page",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "limit",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "search",
						"in": "query",
						"type": "string"
					},
					{
						"name": "sort",
						"in": "query",
						"type": "string",
						"description": "comma separated, leading - for descending"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/page.Job"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/jobs/{id}/applications": {
			"get": {
				"tags": [
					"applications"
				],
				"summary": "List applications to a job",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "page",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "limit",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "search",
						"in": "query",
						"type": "string"
					},
					{
						"name": "sort",
						"in": "query",
						"type": "string",
						"description": "comma separated, leading - for descending"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/page.Application"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/api/v1/applications/{id}/resume": {
			"post": {
				"tags": [
					"applications"
				],
				"summary": "Upload résumé",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "file",
						"in": "formData",
						"required": true,
						"type": "file"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/model.Application"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			},
			"get": {
				"tags": [
					"applications"
				],
				"summary": "Presigned résumé download URL, or the file itself with download=1",
				"produces": [
					"application/json",
					"application/octet-stream"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string",
						"format": "uuid"
					},
					{
						"name": "download",
						"in": "query",
						"type": "boolean",
						"description": "stream the résumé as an attachment instead of returning a URL"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"url": {
									"type": "string"
								}
							}
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/health": {
			"get": {
				"tags": [
					"probes"
				],
				"summary": "Readiness (database ping)",
				"responses": {
					"200": {
						"description": "OK"
					},
					"503": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/handler.errorPayload"
						}
					}
				}
			}
		},
		"/healthz": {
			"get": {
				"tags": [
					"probes"
				],
				"summary": "Liveness",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		}
	},
	"definitions": {
		"model.Company": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				},
				"name": {
					"type": "string"
				},
				"website": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"model.Job": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				},
				"company_id": {
					"type": "string"
				},
				"company": {
					"$ref": "#/definitions/model.Company"
				},
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"employment_type": {
					"type": "string",
					"enum": [
						"full_time",
						"part_time",
						"contract",
						"internship"
					]
				},
				"remote": {
					"type": "boolean"
				},
				"salary_min": {
					"type": "integer"
				},
				"salary_max": {
					"type": "integer"
				},
				"currency": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"enum": [
						"draft",
						"open",
						"closed"
					]
				}
			}
		},
		"model.Application": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				},
				"job_id": {
					"type": "string"
				},
				"job": {
					"$ref": "#/definitions/model.Job"
				},
				"candidate_name": {
					"type": "string"
				},
				"candidate_email": {
					"type": "string"
				},
				"cover_letter": {
					"type": "string"
				},
				"resume_path": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"enum": [
						"submitted",
						"reviewing",
						"rejected",
						"hired"
					]
				}
			}
		},
		"handler.errorPayload": {
			"type": "object",
			"properties": {
				"request_id": {
					"type": "string"
				},
				"error": {
					"type": "object",
					"properties": {
						"code": {
							"type": "string"
						},
						"message": {
							"type": "string"
						},
						"details": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"page.Company": {
			"type": "object",
			"properties": {
				"data": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/model.Company"
					}
				},
				"total": {
					"type": "integer"
				},
				"page": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		},
		"page.Job": {
			"type": "object",
			"properties": {
				"data": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/model.Job"
					}
				},
				"total": {
					"type": "integer"
				},
				"page": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		},
		"page.Application": {
			"type": "object",
			"properties": {
				"data": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/model.Application"
					}
				},
				"total": {
					"type": "integer"
				},
				"page": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "",
	BasePath:		 "/",
	Schemes:		  []string{},
	Title:			"Job Board API",
	Description:	  "Companies, job postings and candidate applications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:		"{{",
	RightDelim:	   "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
