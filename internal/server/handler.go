package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agentevals/internal/app"
	"agentevals/internal/dataset"
	"agentevals/internal/history"
	"agentevals/internal/runner"
)

const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Agent Evals</title>
  </head>
  <body>
    <h1>Agent Evals</h1>
    <p>POST /api/run-handoff-eval or /api/run-tool-eval to start a run.
    GET /api/history and /api/examples?eval_type=tool for stored data.</p>
  </body>
</html>`

// envelope is the JSON body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// runBody is the optional JSON body of the run endpoints.
type runBody struct {
	Model string `json:"model"`
}

// example is one dataset case as shown to API clients.
type example struct {
	CaseID   string `json:"case_id"`
	Prompt   string `json:"prompt"`
	Expected string `json:"expected"`
}

type handlers struct {
	service Service
	logger  *zap.Logger
}

// NewHandler builds the router with CORS, request logging, and metrics.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("server: service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{service: cfg.Service, logger: logger.With(zap.String("component", "server"))}

	router := mux.NewRouter()
	router.Use(loggingMiddleware(h.logger, cfg.Metrics))
	router.HandleFunc("/", serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/healthz", serveHealth).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/run-handoff-eval", h.runEval(runner.EvalHandoff)).Methods(http.MethodPost)
	api.HandleFunc("/run-tool-eval", h.runEval(runner.EvalTool)).Methods(http.MethodPost)
	api.HandleFunc("/history", h.history).Methods(http.MethodGet)
	api.HandleFunc("/examples", h.examples).Methods(http.MethodGet)

	return corsMiddleware(router), nil
}

func serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

func serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) runEval(evalType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body runBody
		if err := decodeOptionalJSON(r, &body); err != nil {
			h.fail(w, err)
			return
		}
		// An empty model lets the App fall back to the configured one.
		req := app.RunRequest{Model: strings.TrimSpace(body.Model)}

		var (
			result runner.EvalResult
			err    error
		)
		if evalType == runner.EvalTool {
			result, err = h.service.RunToolEval(r.Context(), req)
		} else {
			result, err = h.service.RunHandoffEval(r.Context(), req)
		}
		if err != nil {
			h.fail(w, err)
			return
		}
		h.ok(w, result)
	}
}

func (h *handlers) history(w http.ResponseWriter, _ *http.Request) {
	records, err := h.service.History()
	if err != nil {
		h.fail(w, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	h.ok(w, records)
}

func (h *handlers) examples(w http.ResponseWriter, r *http.Request) {
	kind := dataset.KindRouting
	if r.URL.Query().Get("eval_type") == runner.EvalTool {
		kind = dataset.KindTool
	}
	cases, err := h.service.Examples(kind)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]example, 0, len(cases))
	for _, c := range cases {
		out = append(out, example{CaseID: c.ID, Prompt: c.Prompt, Expected: c.Expected})
	}
	h.ok(w, out)
}

func (h *handlers) ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	h.logger.Warn("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: err.Error()})
}

// decodeOptionalJSON accepts an empty body or a JSON object.
func decodeOptionalJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	return json.Unmarshal(data, target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
