package gateway

import "net/http"

// handleSettings returns the settings file with secret values masked.
func (g *Gateway) handleSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.deps.Settings == nil {
			writeJSON(w, http.StatusOK, map[string]string{})
			return
		}
		writeJSON(w, http.StatusOK, g.deps.Redactor.RedactStrings(g.deps.Settings.Snapshot()))
	}
}
