package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the handler set behind request logging.
// Everything under /api/v1 requires a bearer token.
func NewRouter(h *Handler, verifier TokenVerifier, logger logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(verifier))

	api.HandleFunc("/wallets", h.CreateWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallets", h.ListWallets).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{id}", h.GetWallet).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{id}", h.RenameWallet).Methods(http.MethodPatch)
	api.HandleFunc("/wallets/{id}", h.DeleteWallet).Methods(http.MethodDelete)
	api.HandleFunc("/wallets/{id}/entries", h.WalletHistory).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{id}/deposits", h.RecordDeposit).Methods(http.MethodPost)
	api.HandleFunc("/wallets/{id}/withdrawals", h.RecordWithdrawal).Methods(http.MethodPost)

	api.HandleFunc("/transfers", h.RecordTransfer).Methods(http.MethodPost)

	api.HandleFunc("/goals", h.CreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals", h.ListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals/{id}", h.GetGoal).Methods(http.MethodGet)
	api.HandleFunc("/goals/{id}", h.UpdateGoal).Methods(http.MethodPatch)
	api.HandleFunc("/goals/{id}", h.DeleteGoal).Methods(http.MethodDelete)
	api.HandleFunc("/goals/{id}/entries", h.GoalHistory).Methods(http.MethodGet)
	api.HandleFunc("/goals/{id}/contributions", h.ContributeToGoal).Methods(http.MethodPost)

	api.HandleFunc("/entries", h.ListEntries).Methods(http.MethodGet)
	api.HandleFunc("/entries/{id}", h.GetEntry).Methods(http.MethodGet)
	api.HandleFunc("/entries/{id}", h.UpdateEntryDescription).Methods(http.MethodPatch)
	api.HandleFunc("/entries/{id}/reverse", h.ReverseEntry).Methods(http.MethodPost)

	api.HandleFunc("/summary", h.Summary).Methods(http.MethodGet)
	api.HandleFunc("/statistics", h.Statistics).Methods(http.MethodGet)

	return r
}
