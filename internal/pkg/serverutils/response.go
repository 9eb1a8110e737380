package serverutils

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type APIErrorResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Kind    string                 `json:"kind,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}
