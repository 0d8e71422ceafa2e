package health

// Response represents the health check response
type Response struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ReadyResponse reports dependency status
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// InfoResponse lists the public API surface
type InfoResponse struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}
