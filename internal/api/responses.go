package api

type ErrorResponse struct {
	Error   string      `json:"error" example:"something went wrong"`
	Kind    string      `json:"kind,omitempty" example:"validation"`
	Details interface{} `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status               string `json:"status" example:"ok"`
	PendingNotifications int64  `json:"pending_notifications"`
}
