package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/hyunwoo-dev/elkmart/internal/audit"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
)

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func main() {
	logging.Init("mock-mailer", "info", os.Getenv("APP_ENV"), audit.NewSink(""))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /send", func(w http.ResponseWriter, r *http.Request) {
		var req mailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		slog.Info("mail accepted",
			"to", req.To,
			"subject", req.Subject,
		)
		w.WriteHeader(http.StatusAccepted)
	})

	slog.Info("mock mailer started", "addr", ":8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
