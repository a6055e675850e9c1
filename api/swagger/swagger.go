package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GradeTrack API",
        "description": "Gradebook aggregation and persistence service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Gradebook", "description": "Gradebook document and mutations"},
        {"name": "Stats", "description": "Derived aggregates and the grade scale"},
        {"name": "Exports", "description": "Transcript export jobs"}
    ],
    "paths": {
        "/gradebook": {
            "get": {
                "tags": ["Gradebook"],
                "summary": "Fetch the authenticated user's gradebook",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Gradebook"],
                "summary": "Delete all gradebook data",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/gradebook/overview": {
            "get": {
                "tags": ["Stats"],
                "summary": "Cumulative GPA, counts and the current semester",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/scale": {
            "get": {
                "tags": ["Stats"],
                "summary": "The fixed grade scale",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/semesters": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Append a semester",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSemesterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/semesters/{semesterID}": {
            "delete": {
                "tags": ["Gradebook"],
                "summary": "Delete a semester and its courses",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/semesters/{semesterID}/stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Semester stats with per-course breakdown",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown semester"}
                }
            }
        },
        "/gradebook/semesters/{semesterID}/courses": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Append a course to a semester",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/semesters/{semesterID}/courses/{courseID}": {
            "patch": {
                "tags": ["Gradebook"],
                "summary": "Patch course fields",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "courseID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Gradebook"],
                "summary": "Delete a course and its assessments",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "courseID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/semesters/{semesterID}/courses/{courseID}/stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Course metrics and resolved grade band",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "courseID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown semester or course"}
                }
            }
        },
        "/gradebook/semesters/{semesterID}/courses/{courseID}/assessments": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Append an assessment to a course",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "courseID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssessmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gradebook/semesters/{semesterID}/courses/{courseID}/assessments/{assessmentID}": {
            "patch": {
                "tags": ["Gradebook"],
                "summary": "Patch assessment fields; a null score clears the grade",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "courseID", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Gradebook"],
                "summary": "Delete an assessment",
                "parameters": [
                    {"name": "semesterID", "in": "path", "required": true, "type": "string"},
                    {"name": "courseID", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a transcript export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{jobID}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "jobID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job"}
                }
            }
        },
        "/exports/{jobID}/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "parameters": [
                    {"name": "jobID", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "Semester": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "term": {"type": "string", "enum": ["Winter", "Summer", "Spring", "Fall"]},
                "year": {"type": "integer"},
                "status": {"type": "string", "enum": ["Planned", "In Progress", "Completed"]},
                "gpa": {"type": "number"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/Course"}},
                "credits": {"type": "number"},
                "current": {"type": "boolean"}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "code": {"type": "string"},
                "credits": {"type": "number"},
                "instructor": {"type": "string"},
                "targetGrade": {"type": "string"},
                "notes": {"type": "string"},
                "gradeDistribution": {"type": "array", "items": {"$ref": "#/definitions/GradeDistributionEntry"}},
                "grade": {"type": "string"},
                "assessments": {"type": "array", "items": {"$ref": "#/definitions/Assessment"}}
            }
        },
        "Assessment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "weight": {"type": "number"},
                "dueDate": {"type": "string"},
                "completed": {"type": "boolean"},
                "score": {"type": "number"}
            }
        },
        "GradeDistributionEntry": {
            "type": "object",
            "properties": {
                "grade": {"type": "string"},
                "value": {"type": "number"}
            }
        },
        "CreateSemesterRequest": {
            "type": "object",
            "properties": {
                "term": {"type": "string", "enum": ["Winter", "Summer", "Spring", "Fall"]},
                "year": {"type": "integer"},
                "status": {"type": "string", "enum": ["Planned", "In Progress", "Completed"]},
                "current": {"type": "boolean"}
            },
            "required": ["term", "year"]
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "credits": {"type": "number"},
                "instructor": {"type": "string"},
                "targetGrade": {"type": "string"},
                "notes": {"type": "string"},
                "gradeDistribution": {"type": "array", "items": {"$ref": "#/definitions/GradeDistributionEntry"}}
            },
            "required": ["name"]
        },
        "CreateAssessmentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "weight": {"type": "number"},
                "dueDate": {"type": "string"},
                "completed": {"type": "boolean"},
                "score": {"type": "number"}
            },
            "required": ["name"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["format"]
        },
        "ExportJob": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "format": {"type": "string"},
                "status": {"type": "string", "enum": ["QUEUED", "PROCESSING", "FINISHED", "FAILED"]},
                "download_url": {"type": "string"},
                "expires_at": {"type": "string"},
                "created_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "error_message": {"type": "string"}
            }
        },
        "GradeBand": {
            "type": "object",
            "properties": {
                "min": {"type": "number"},
                "letter": {"type": "string"},
                "points": {"type": "number"}
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
