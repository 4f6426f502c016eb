package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// MetricsSummary is returned by GET /v1/metrics/summary.
type MetricsSummary struct {
	BackendErrors       float64 `json:"backendErrors"`
	SessionCacheHitRate float64 `json:"sessionCacheHitRate"`
	VacationsAccepted   float64 `json:"vacationsAccepted"`
	VacationsRejected   float64 `json:"vacationsRejected"`
	BonusReports        float64 `json:"bonusReports"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
