package models

// HealthStatus is the payload of GET /api/resume/health.
type HealthStatus struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	GeminiConfigured bool   `json:"gemini_configured"`
}

// ServiceInfo is the payload of GET /.
type ServiceInfo struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
