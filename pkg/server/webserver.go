package server

import (
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bilhallen/filter-engine/pkg/catalog"
	"github.com/bilhallen/filter-engine/pkg/common"
	"github.com/bilhallen/filter-engine/pkg/dispatch"
	"github.com/bilhallen/filter-engine/pkg/engine"
	"github.com/bilhallen/filter-engine/pkg/hierarchy"
	"github.com/bilhallen/filter-engine/pkg/tracking"
)

type WebServer struct {
	Engine     *engine.Engine
	Dispatcher *dispatch.Dispatcher
	Store      catalog.Store
	Hierarchy  hierarchy.Store
	Tracking   tracking.Tracker
	Binding    *PageBinding
	Log        *logrus.Logger
	BasePath   string
	PageSize   int

	mu    sync.Mutex
	bound map[string]struct{}
}

func (ws *WebServer) pageSize() int {
	if ws.PageSize > 0 {
		return ws.PageSize
	}
	return dispatch.DefaultPageSize
}

// ClientHandler serves the api surface: flat search, hierarchy browsing and
// group state mutations.
func (ws *WebServer) ClientHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", common.JsonHandler(ws.Search))
	mux.HandleFunc("GET /makes", common.JsonHandler(ws.Makes))
	mux.HandleFunc("GET /makes/{makeId}/models", common.JsonHandler(ws.Models))
	mux.HandleFunc("GET /groups/{group}", common.JsonHandler(ws.GroupState))
	mux.HandleFunc("GET /groups/{group}/result", common.JsonHandler(ws.GroupResult))
	mux.HandleFunc("POST /groups/{group}/set", common.JsonHandler(ws.SetFacet))
	return mux
}

// FilterHandler serves the canonical bookmarkable filter paths under BasePath.
func (ws *WebServer) FilterHandler() http.Handler {
	return common.JsonHandler(ws.Filter)
}
