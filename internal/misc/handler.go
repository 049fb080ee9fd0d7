package misc

import (
	"net/http"

	"github.com/2beens/fittrack/internal/api"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
)

type Handler struct {
	versionInfo string
	responder   *api.Responder
}

func NewHandler(versionInfo string, responder *api.Responder) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		responder:   responder,
	}
}

type HealthView struct {
	Version string `json:"versao,omitempty"`
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET", "OPTIONS").Name("health")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "fittrack API is up")
}

func (handler *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	handler.responder.OK(w, HealthView{Version: handler.versionInfo}, "")
}
