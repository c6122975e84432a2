package concurrency

import (
	"encoding/json"
	"net/http"
)

// StatusHandler expõe o snapshot do gerenciador em JSON (GET /status).
//
// Os headers X-Gate-* repetem os campos principais para quem só quer fazer
// HEAD/olhar headers em um probe.
func StatusHandler(m *Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		st := m.Status()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Gate-Capacity", formatInt(st.MaxConcurrent))
		w.Header().Set("X-Gate-In-Use", formatInt(st.CurrentConcurrent))
		w.Header().Set("X-Gate-Utilization", formatFloat(st.UtilizationPercent))

		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(st)
	})
}
