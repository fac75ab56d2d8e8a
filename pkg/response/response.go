package response

// Response represents the standard envelope wrapped around every API response.
// Callers check Success before trusting Data.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// SuccessWithMessage returns a success response carrying an informational message
func SuccessWithMessage(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// Error returns a standard error response wrapping the error message
func Error(err string) Response {
	return Response{
		Success: false,
		Error:   err,
	}
}
