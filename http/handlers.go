package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/IndianOnRun/PredictionIO/engine"
	"github.com/IndianOnRun/PredictionIO/event"
	"github.com/IndianOnRun/PredictionIO/monitoring"
)

// API holds the handlers of the query and event endpoints.
type API struct {
	engine  *engine.Engine
	store   *event.Store
	hub     *monitoring.Hub
	logger  *zap.Logger
	cache   *lru.Cache[string, engine.PredictedResult]
	started time.Time

	queries   atomic.Int64
	cacheHits atomic.Int64
	ingested  atomic.Int64
}

// NewAPI wires the handlers. cacheSize bounds the query result cache.
func NewAPI(e *engine.Engine, store *event.Store, hub *monitoring.Hub, logger *zap.Logger, cacheSize int) (*API, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, engine.PredictedResult](cacheSize)
	if err != nil {
		return nil, err
	}
	return &API{
		engine:  e,
		store:   store,
		hub:     hub,
		logger:  logger,
		cache:   cache,
		started: time.Now(),
	}, nil
}

// Register attaches all routes to the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /queries.json", a.handleQuery)
	mux.HandleFunc("POST /events.json", a.handleCreateEvent)
	mux.HandleFunc("GET /events.json", a.handleListEvents)
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/stats", a.handleStats)
	mux.Handle("GET /ws/monitor", a.hub)
}

func (a *API) handleQuery(w http.ResponseWriter, r *http.Request) {
	var q engine.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query body: "+err.Error())
		return
	}
	if len(q.Features) == 0 {
		writeError(w, http.StatusBadRequest, "features are required")
		return
	}
	a.queries.Add(1)

	key := cacheKey(q.Features)
	result, hit := a.cache.Get(key)
	if hit {
		a.cacheHits.Add(1)
	} else {
		var err error
		result, err = a.engine.Predict(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.cache.Add(key, result)
	}

	a.hub.Broadcast(monitoring.QueryServed, map[string]interface{}{
		"features": q.Features, "label": result.Label, "cached": hit,
	})
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var e event.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body: "+err.Error())
		return
	}
	if err := a.store.Insert(&e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.ingested.Add(1)
	writeJSON(w, http.StatusCreated, map[string]string{"eventId": e.ID})
}

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.Atoi(r.URL.Query().Get("appId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "appId is required")
		return
	}
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	events, err := a.store.Recent(appID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int(time.Since(a.started).Seconds()),
		"queries":        a.queries.Load(),
		"cache_hits":     a.cacheHits.Load(),
		"events":         a.ingested.Load(),
	})
}

func cacheKey(features []float64) string {
	var b strings.Builder
	for i, f := range features {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", f)
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
