package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// NewErrorDetailsResponse attaches structured details, such as rejected
// fields or the conflicting patient, to an error response.
func NewErrorDetailsResponse(message string, details interface{}) *Response {
	return &Response{
		Status:  "error",
		Message: message,
		Details: details,
	}
}
