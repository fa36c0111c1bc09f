package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/bilhallen/filter-engine/pkg/engine"
	"github.com/bilhallen/filter-engine/pkg/hierarchy"
	"github.com/bilhallen/filter-engine/pkg/types"
	"github.com/bilhallen/filter-engine/pkg/urlstate"
)

type FilterResponse struct {
	Html         string             `json:"html"`
	TotalCount   int                `json:"totalCount"`
	PageCount    int                `json:"pageCount"`
	CanonicalUrl string             `json:"canonicalUrl"`
	State        *types.FilterState `json:"state"`
	UnknownMake  bool               `json:"unknownMake,omitempty"`
}

func (ws *WebServer) respond(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, stale-while-revalidate=120")
	return sonic.ConfigDefault.NewEncoder(w).Encode(data)
}

// Filter handles the canonical path grammar, e.g.
// /cars/filter/make:bmw/meta/price!range:10000_50000/.
func (ws *WebServer) Filter(w http.ResponseWriter, r *http.Request, _ string) error {
	decoded := urlstate.Decode(r.URL.Path)
	state := types.NewFilterState()
	state.BaseUrl = ws.BasePath
	unknownMake := false

	if decoded.MakeSlug != "" {
		resolution, err := hierarchy.Resolve(r.Context(), ws.Hierarchy, decoded.MakeSlug)
		if err != nil {
			ws.Tracking.ResolutionFailure(decoded.MakeSlug, err)
			http.Error(w, "hierarchy unavailable", http.StatusServiceUnavailable)
			return err
		}
		if resolution.Category != nil {
			state.Category = &types.Ref{Id: resolution.Category.Id, Slug: resolution.Category.Slug}
		}
		if resolution.SubCategory != nil {
			state.SubCategory = &types.Ref{Id: resolution.SubCategory.Id, Slug: resolution.SubCategory.Slug}
		}
		unknownMake = resolution.Unknown
	}
	state.Ranges = decoded.Ranges
	state.Values = decoded.Values

	result, err := ws.Store.Query(r.Context(), state.ToPredicate(ws.pageSize()))
	if err != nil {
		ws.Tracking.TransportFailure("filter", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return err
	}
	return ws.respond(w, FilterResponse{
		Html:         result.Html,
		TotalCount:   result.TotalCount,
		PageCount:    result.PageCount,
		CanonicalUrl: urlstate.Encode(state),
		State:        state,
		UnknownMake:  unknownMake,
	})
}

// Search handles the backward-compatible flat query-string form.
func (ws *WebServer) Search(w http.ResponseWriter, r *http.Request, _ string) error {
	q, err := urlstate.DecodeQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	state := q.ToState(ws.BasePath)
	ws.fillSlug(r, state.Category)
	ws.fillSlug(r, state.SubCategory)

	result, err := ws.Store.Query(r.Context(), state.ToPredicate(q.PageSize))
	if err != nil {
		ws.Tracking.TransportFailure("search", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return err
	}
	return ws.respond(w, FilterResponse{
		Html:         result.Html,
		TotalCount:   result.TotalCount,
		PageCount:    result.PageCount,
		CanonicalUrl: urlstate.Encode(state),
		State:        state,
	})
}

// fillSlug backfills the slug for an id-only reference so the canonical URL
// can be rendered. Lookup failures leave the slug empty.
func (ws *WebServer) fillSlug(r *http.Request, ref *types.Ref) {
	if ref == nil || ref.Slug != "" {
		return
	}
	if node, err := ws.Hierarchy.ById(r.Context(), ref.Id); err == nil {
		ref.Slug = node.Slug
	}
}

func (ws *WebServer) Makes(w http.ResponseWriter, r *http.Request, _ string) error {
	makes, err := ws.Hierarchy.ChildrenOf(r.Context(), 0)
	if err != nil {
		http.Error(w, "hierarchy unavailable", http.StatusServiceUnavailable)
		return err
	}
	return ws.respond(w, makes)
}

func (ws *WebServer) Models(w http.ResponseWriter, r *http.Request, _ string) error {
	makeId, err := strconv.ParseUint(r.PathValue("makeId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid make id", http.StatusBadRequest)
		return err
	}
	models, err := ws.Hierarchy.ChildrenOf(r.Context(), uint(makeId))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			http.Error(w, "no such make", http.StatusNotFound)
			return nil
		}
		http.Error(w, "hierarchy unavailable", http.StatusServiceUnavailable)
		return err
	}
	return ws.respond(w, models)
}

type GroupStateResponse struct {
	State        *types.FilterState `json:"state"`
	CanonicalUrl string             `json:"canonicalUrl"`
}

func (ws *WebServer) GroupState(w http.ResponseWriter, r *http.Request, _ string) error {
	state := ws.Engine.Snapshot(r.PathValue("group"))
	return ws.respond(w, GroupStateResponse{
		State:        state,
		CanonicalUrl: urlstate.Encode(state),
	})
}

type GroupResultResponse struct {
	Result  *types.Result  `json:"result,omitempty"`
	Url     string         `json:"url,omitempty"`
	History []HistoryEntry `json:"history,omitempty"`
}

// GroupResult exposes the latest dispatched result for a group's target, for
// bindings that poll instead of pushing.
func (ws *WebServer) GroupResult(w http.ResponseWriter, r *http.Request, _ string) error {
	group := r.PathValue("group")
	state := ws.Engine.Snapshot(group)
	resp := GroupResultResponse{}
	if ws.Binding != nil {
		resp.Result = ws.Binding.Result(state.Target)
		resp.Url = ws.Binding.URL(group)
		resp.History = ws.Binding.History(group)
	}
	return ws.respond(w, resp)
}

type SetFacetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Slug  string `json:"slug,omitempty"`
}

// SetFacet mutates one facet of a group and schedules a debounced refresh
// through the dispatcher binding.
func (ws *WebServer) SetFacet(w http.ResponseWriter, r *http.Request, _ string) error {
	group := r.PathValue("group")
	req := SetFacetRequest{}
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}

	ws.Engine.InitGroup(group, engine.GroupDefaults{BaseUrl: ws.BasePath})
	ws.ensureBound(group)

	var err error
	if req.Slug != "" {
		err = ws.Engine.Set(group, types.FacetKey(req.Key), req.Value, req.Slug)
	} else {
		err = ws.Engine.Set(group, types.FacetKey(req.Key), req.Value)
	}
	if err != nil {
		if errors.Is(err, types.ErrUnknownFacet) || errors.Is(err, types.ErrInvalidFacetValue) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			return sonic.ConfigDefault.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}

	state := ws.Engine.Snapshot(group)
	w.WriteHeader(http.StatusAccepted)
	return sonic.ConfigDefault.NewEncoder(w).Encode(GroupStateResponse{
		State:        state,
		CanonicalUrl: urlstate.Encode(state),
	})
}

func (ws *WebServer) ensureBound(group string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.bound == nil {
		ws.bound = map[string]struct{}{}
	}
	if _, ok := ws.bound[group]; ok {
		return
	}
	ws.bound[group] = struct{}{}
	ws.Dispatcher.BindGroup(group)
}
