// Package handlers contains the HTTP handler implementations for the
// grovesim API.
//
// This file implements the simulation handler. It covers:
//   - Running a single water-balance scenario
//   - Running a batch scenario sweep
//   - Describing the accepted management inputs
//   - Retrieving and listing persisted runs
//   - Route registration
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"grovesim/internal/core"
	"grovesim/internal/engine"
	"grovesim/internal/types"
)

// RunStore defines the data access contract for simulation run history.
// Mirrors the concrete db.SimulationRunRepository methods used by this
// handler. A nil store disables persistence: simulations still run, but
// results are not recorded and history lookups return not-found.
type RunStore interface {
	Create(ctx context.Context, run *types.SimulationRun) error
	GetByID(ctx context.Context, id string) (*types.SimulationRun, error)
	ListRecent(ctx context.Context, limit int) ([]*types.SimulationRun, error)
}

// --- Request/Response Models ---

// SimulationResponse is the response body for a single simulation. ID is
// only set when the run was persisted.
type SimulationResponse struct {
	ID        string                 `json:"id,omitempty"`
	Input     types.SimulationInput  `json:"input"`
	Result    types.SimulationResult `json:"result"`
	Breakdown []types.BalanceEntry   `json:"breakdown"`
}

// BatchSimulationRequest is the request body for POST /v1/simulations/batch.
type BatchSimulationRequest struct {
	Scenarios []types.SimulationInput `json:"scenarios"`
}

// BatchItemResponse is one entry of a batch response. Exactly one of
// Result and Error is set.
type BatchItemResponse struct {
	Index  int                     `json:"index"`
	Input  types.SimulationInput   `json:"input"`
	Result *types.SimulationResult `json:"result,omitempty"`
	Error  *BatchItemError         `json:"error,omitempty"`
}

// BatchItemError carries the failure detail for a rejected scenario.
type BatchItemError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BatchSimulationResponse is the response body for a batch sweep.
type BatchSimulationResponse struct {
	Items     []BatchItemResponse `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// RunListResponse is the response body for GET /v1/simulations.
type RunListResponse struct {
	Runs []*types.SimulationRun `json:"runs"`
}

// --- Handler ---

// SimulationHandler serves the water-balance simulation endpoints.
type SimulationHandler struct {
	store  RunStore
	logger *slog.Logger
}

// NewSimulationHandler creates a new SimulationHandler. store may be nil
// when run history is disabled.
func NewSimulationHandler(store RunStore, logger *slog.Logger) *SimulationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes mounts simulation routes on the provided chi.Router.
func (h *SimulationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/simulations", func(r chi.Router) {
		r.Post("/", h.Simulate)
		r.Post("/batch", h.SimulateBatch)
		r.Get("/", h.ListRuns)
		r.Get("/inputs", h.DescribeInputs)
		r.Get("/{id}", h.GetRun)
	})
}

// --- Handler Methods ---

// Simulate handles POST /v1/simulations.
//
//  1. Decode and validate the scenario inputs.
//  2. Run the water-balance pipeline.
//  3. Persist the run when a store is configured. Persistence is a soft
//     dependency: a storage failure is logged and the response is still
//     returned, without an ID.
//  4. Return the result with the per-component balance breakdown.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var input types.SimulationInput
	if err := core.DecodeJSON(w, r, &input); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := types.ValidateSimulationInput(input); err != nil {
		core.Error(w, r, err)
		return
	}

	result := engine.Compute(input)

	resp := SimulationResponse{
		Input:     input,
		Result:    result,
		Breakdown: result.Breakdown(),
	}

	if h.store != nil {
		run := &types.SimulationRun{
			ID:        "sim_" + uuid.NewString(),
			Input:     input,
			Result:    result,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.store.Create(r.Context(), run); err != nil {
			h.logger.WarnContext(r.Context(), "failed to persist simulation run",
				slog.String("run_id", run.ID),
				slog.String("error", err.Error()),
			)
		} else {
			resp.ID = run.ID
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// SimulateBatch handles POST /v1/simulations/batch.
//
// Scenarios are evaluated concurrently. Invalid scenarios fail
// individually without aborting the rest of the sweep. Batch runs are
// not persisted.
func (h *SimulationHandler) SimulateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchSimulationRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if len(req.Scenarios) == 0 {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationMissingField,
			"scenarios must contain at least one entry",
			nil,
			map[string]any{"field": "scenarios"},
		))
		return
	}

	sweep, err := engine.Sweep(r.Context(), req.Scenarios)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := BatchSimulationResponse{
		Items:     make([]BatchItemResponse, 0, len(sweep.Items)),
		Succeeded: sweep.Succeeded,
		Failed:    sweep.Failed,
	}
	for _, item := range sweep.Items {
		out := BatchItemResponse{
			Index:  item.Index,
			Input:  item.Input,
			Result: item.Result,
		}
		if item.Error != nil {
			out.Error = &BatchItemError{
				Code:    string(item.Error.Code),
				Message: item.Error.Message,
				Details: item.Error.Details,
			}
		}
		resp.Items = append(resp.Items, out)
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// DescribeInputs handles GET /v1/simulations/inputs. It returns the
// accepted management variables with their ranges and enum values so
// clients can build input forms without hardcoding limits.
func (h *SimulationHandler) DescribeInputs(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: types.StandardInputs})
}

// GetRun handles GET /v1/simulations/{id}.
func (h *SimulationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.store == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeNotFoundSimulation,
			"simulation run not found",
			nil,
		))
		return
	}

	run, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: run})
}

// ListRuns handles GET /v1/simulations. The optional limit query
// parameter caps the page size; non-numeric values are rejected.
func (h *SimulationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationQueryParam,
				"limit must be an integer",
				err,
				map[string]any{"field": "limit", "got": raw},
			))
			return
		}
		limit = parsed
	}

	if h.store == nil {
		core.JSON(w, r, http.StatusOK, core.APIResponse{Data: RunListResponse{Runs: []*types.SimulationRun{}}})
		return
	}

	runs, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if runs == nil {
		runs = []*types.SimulationRun{}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: RunListResponse{Runs: runs}})
}
