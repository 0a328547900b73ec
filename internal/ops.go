package internal

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Handler exposes operator commands over HTTP, mounted next to the metrics
// endpoint. Commands act on the next tick of the targeted account:
//
//	GET  /status                                  one line per account
//	POST /close?account=<id>                      close the open position
//	POST /take-profit?account=<id>&price=<p>      install a custom take-profit
func (r *Registry) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", r.handleStatus)
	mux.HandleFunc("/close", r.handleClose)
	mux.HandleFunc("/take-profit", r.handleTakeProfit)
	return mux
}

func (r *Registry) handleStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	for _, line := range r.Status() {
		fmt.Fprintln(w, line)
	}
}

func (r *Registry) handleClose(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := req.URL.Query().Get("account")
	if accountID == "" {
		http.Error(w, "'account' query param is required", http.StatusBadRequest)
		return
	}

	if err := r.ManualClose(accountID); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	fmt.Fprintf(w, "close requested for %s\n", accountID)
}

func (r *Registry) handleTakeProfit(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := req.URL.Query().Get("account")
	if accountID == "" {
		http.Error(w, "'account' query param is required", http.StatusBadRequest)
		return
	}

	price, err := decimal.NewFromString(req.URL.Query().Get("price"))
	if err != nil {
		http.Error(w, "'price' query param must be a valid decimal", http.StatusBadRequest)
		return
	}

	if err := r.SetCustomTakeProfit(accountID, price); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	fmt.Fprintf(w, "take-profit %s set for %s\n", price.String(), accountID)
}
