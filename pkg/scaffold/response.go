package scaffold

// Response is the JSON envelope written by CRUD actions. Request bodies use
// the same "data" envelope, so a response can be posted back unchanged.
type Response struct {
	// StatusCode is the HTTP status code to return
	StatusCode int `json:"-"`

	// Data is the entity or entity list
	Data interface{} `json:"data,omitempty"`

	// Message is an optional, already localized, user-facing message
	Message string `json:"message,omitempty"`

	// Errors holds validation messages keyed by property name
	Errors map[string][]string `json:"errors,omitempty"`
}

// NewResponse creates a new Response with the specified status code and data
func NewResponse(statusCode int, data interface{}) *Response {
	return &Response{
		StatusCode: statusCode,
		Data:       data,
	}
}

// OK creates a 200 OK response with the given data
func OK(data interface{}) *Response {
	return NewResponse(200, data)
}

// Created creates a 201 Created response with the given data
func Created(data interface{}) *Response {
	return NewResponse(201, data)
}

// WithMessage sets the user-facing message
func (r *Response) WithMessage(message string) *Response {
	r.Message = message
	return r
}

// Invalid creates a 422 response carrying the submitted data and its validation errors
func Invalid(data interface{}, errors map[string][]string) *Response {
	return &Response{StatusCode: 422, Data: data, Errors: errors}
}
