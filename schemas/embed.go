// Package schemas holds the JSON Schemas describing the analysis service's response bodies.
package schemas

import _ "embed"

// AnalyzeResponse is the schema of a successful POST /api/analyze body.
//
//go:embed analyze_response.schema.json
var AnalyzeResponse string

// Health is the schema of the GET /api/health body.
//
//go:embed health.schema.json
var Health string
