package domain

// Status é o snapshot exposto para operadores e monitoração.
//
// Os nomes dos campos JSON são contrato estável; mudar um nome quebra
// dashboards de quem consome.
type Status struct {
	MaxConcurrent        int     `json:"global_max_concurrent"`
	CurrentConcurrent    int     `json:"current_concurrent"`
	AvailableSlots       int     `json:"available_slots"`
	UtilizationPercent   float64 `json:"utilization_percentage"`
	TotalRequests        int64   `json:"total_requests"`
	MaxConcurrentReached int64   `json:"max_concurrent_reached"`
	UptimeSeconds        float64 `json:"uptime_seconds"`
}

// Advice devolve uma dica de operação com base na utilização atual.
func (s Status) Advice() string {
	switch {
	case s.UtilizationPercent > 80:
		return "high utilization: consider raising the global concurrency limit"
	case s.UtilizationPercent < 20:
		return "low utilization: the global limit could be lowered"
	default:
		return "utilization within normal range"
	}
}
