package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ParamError reports a path or query parameter that could not be bound.
type ParamError struct {
	Name string
	Err  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s: %v", e.Name, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// Routes mounts the API on r. Binding failures answer 400 bad_request
// before any handler runs.
func (s *Server) Routes(r chi.Router) {
	r.Get("/documents", s.routeListDocuments)
	r.Get("/documents/{id}", s.routeGetDocument)
	r.Get("/documents/{id}/similar", s.routeGetSimilarDocuments)
	r.Get("/recommendations", s.routeGetRecommendations)
	r.Get("/compare", s.routeCompareStrategies)
	r.Get("/usage", s.routeGetUsage)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

func (s *Server) routeListDocuments(w http.ResponseWriter, r *http.Request) {
	var p ListParams
	if err := bindQuery(r, optional("q", &p.Q)); err != nil {
		paramError(w, err)
		return
	}
	s.ListDocuments(w, r, p)
}

func (s *Server) routeGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		paramError(w, err)
		return
	}
	s.GetDocument(w, r, id)
}

func (s *Server) routeGetSimilarDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		paramError(w, err)
		return
	}
	var p SimilarParams
	if err := bindQuery(r, optional("strategy", &p.Strategy), optional("top_n", &p.TopN)); err != nil {
		paramError(w, err)
		return
	}
	s.GetSimilarDocuments(w, r, id, p)
}

func (s *Server) routeGetRecommendations(w http.ResponseWriter, r *http.Request) {
	var p RecommendParams
	err := bindQuery(r,
		required("q", &p.Q),
		optional("strategy", &p.Strategy),
		optional("top_n", &p.TopN),
	)
	if err != nil {
		paramError(w, err)
		return
	}
	s.GetRecommendations(w, r, p)
}

func (s *Server) routeCompareStrategies(w http.ResponseWriter, r *http.Request) {
	var p CompareParams
	err := bindQuery(r,
		optional("q", &p.Q),
		optional("id", &p.ID),
		optional("top_n", &p.TopN),
	)
	if err != nil {
		paramError(w, err)
		return
	}
	s.CompareStrategies(w, r, p)
}

func (s *Server) routeGetUsage(w http.ResponseWriter, r *http.Request) {
	var p UsageParams
	if err := bindQuery(r, optional("period", &p.Period)); err != nil {
		paramError(w, err)
		return
	}
	s.GetUsage(w, r, p)
}

type queryParam struct {
	name     string
	required bool
	dest     any
}

func required(name string, dest any) queryParam { return queryParam{name: name, required: true, dest: dest} }

func optional(name string, dest any) queryParam { return queryParam{name: name, dest: dest} }

// bindQuery binds form-style query parameters in order and stops at the first failure.
func bindQuery(r *http.Request, params ...queryParam) error {
	query := r.URL.Query()
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, p.required, p.name, query, p.dest); err != nil {
			return &ParamError{Name: p.name, Err: err}
		}
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return 0, &ParamError{Name: "id", Err: err}
	}
	return id, nil
}

func paramError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
}
