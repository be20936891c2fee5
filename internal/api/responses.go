package api

type ErrorResponse struct {
	Error string `json:"error" example:"class is full"`
}

type MessageResponse struct {
	Message string `json:"message" example:"booking cancelled"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
