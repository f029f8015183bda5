package transport

import "time"

// Operation describes one backend HTTP call.
type Operation struct {
	// Name identifies the operation in logs and metrics (e.g., "analyze_frame")
	Name string

	// Method is the HTTP method (GET, POST)
	Method string

	// Path is appended to the discovered base URL
	Path string

	// Body is JSON-encoded when non-nil
	Body any

	// Timeout overrides the transport's request timeout when non-zero
	Timeout time.Duration
}

// UploadOperation describes a multipart file upload.
type UploadOperation struct {
	Name      string
	Path      string
	FileField string
	FilePath  string
	Fields    map[string]string
	Timeout   time.Duration
}

// NewJSONOperation creates a POST operation with a JSON body.
func NewJSONOperation(name, path string, body any) Operation {
	return Operation{Name: name, Method: "POST", Path: path, Body: body}
}

// NewGetOperation creates a GET operation.
func NewGetOperation(name, path string) Operation {
	return Operation{Name: name, Method: "GET", Path: path}
}
