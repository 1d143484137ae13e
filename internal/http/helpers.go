package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"runrate/internal/core"
	"runrate/internal/services"
)

var templateFuncs = template.FuncMap{
	"kpi":   func(d decimal.Decimal) string { return core.FormatEuros(d, 0) },
	"euros": func(d decimal.Decimal) string { return core.FormatEuros(d, 2) },
	"inc":   func(i int) int { return i + 1 },
}

// parseQuery reads the optional from/to range bounds. Unparseable values are
// dropped so the dataset bounds apply.
func (s *Server) parseQuery(r *http.Request) services.DashboardQuery {
	var q services.DashboardQuery
	q.From = s.parseDateParam(r, "from")
	q.To = s.parseDateParam(r, "to")
	return q
}

func (s *Server) parseDateParam(r *http.Request, name string) core.Date {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(v)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Ignoring invalid range bound", "param", name, "value", v)
		return core.Date{}
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
