package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adaian/adreport-cli/internal/analyzer"
	"github.com/adaian/adreport-cli/internal/metrics"
	"github.com/adaian/adreport-cli/internal/model"
	"github.com/adaian/adreport-cli/internal/store"
)

var servePort int

// formRoles are the multipart field names accepted by the analyze endpoint.
var formRoles = []string{"campaign", "device", "keyword", "creative", "audience"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		a, st, err := initAnalyzer(ctx, m)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		r.Post("/api/v1/analyze", handleAnalyze(a))
		r.Get("/api/v1/runs", handleListRuns(st))
		r.Get("/api/v1/runs/{id}", handleGetRun(st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func handleAnalyze(a *analyzer.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(cfg.Ingest.MaxBodyBytes); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "요청이 너무 큽니다.")
			return
		}

		family := model.Family(r.FormValue("family"))
		if family == "" {
			family = model.FamilySearch
		}

		var inputs []analyzer.Input
		for _, role := range formRoles {
			file, header, err := r.FormFile(role)
			if err != nil {
				if errors.Is(err, http.ErrMissingFile) {
					continue
				}
				writeError(w, http.StatusBadRequest, "업로드 파일을 읽지 못했습니다.")
				return
			}
			data, err := readAll(file)
			if err != nil {
				writeError(w, http.StatusBadRequest, "업로드 파일을 읽지 못했습니다.")
				return
			}
			inputs = append(inputs, analyzer.Input{Role: role, Name: header.Filename, Data: data})
		}

		res, err := a.Run(r.Context(), family, inputs)
		if err != nil {
			var runErr *analyzer.Error
			if errors.As(err, &runErr) {
				writeError(w, statusFor(runErr.Kind), runErr.UserMessage())
				return
			}
			writeError(w, http.StatusInternalServerError, "보고서 생성 중 오류가 발생했습니다.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"run_id": res.RunID,
			"report": res.Report,
		})
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
			Family: model.Family(r.URL.Query().Get("family")),
		}
		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "run history unavailable")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// statusFor maps run error kinds to HTTP statuses.
func statusFor(kind string) int {
	switch kind {
	case analyzer.KindBadInput:
		return http.StatusBadRequest
	case analyzer.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case analyzer.KindHeaderNotFound:
		return http.StatusUnprocessableEntity
	case analyzer.KindQuota:
		return http.StatusTooManyRequests
	case analyzer.KindOverloaded:
		return http.StatusServiceUnavailable
	case analyzer.KindDeadline:
		return http.StatusGatewayTimeout
	case analyzer.KindBadFormat:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func readAll(file multipart.File) ([]byte, error) {
	defer file.Close() //nolint:errcheck
	return io.ReadAll(file)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
