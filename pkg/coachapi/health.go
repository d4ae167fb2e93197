package coachapi

// HealthChecks reports per-dependency health in the readiness response.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Mailer   string `json:"mailer,omitempty"`
}

// HealthResponse is the body for the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"` // ok | degraded
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
