package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API with a background enrichment scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		env.Pipeline.Sync(ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Pipeline),
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			env.Pipeline.RunScheduler(ctx)
			return nil
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// newRouter builds the API router over a pipeline.
func newRouter(p *pipeline.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/sync", func(w http.ResponseWriter, req *http.Request) {
		records := p.Sync(req.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"records":   len(records),
			"queue_len": p.QueueLen(),
		})
	})

	r.Get("/candidates", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, p.Records())
	})

	r.Get("/queue", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"pending": p.QueuedEmails(),
		})
	})

	r.Get("/candidates/{email}", func(w http.ResponseWriter, req *http.Request) {
		c, ok := p.Candidate(chi.URLParam(req, "email"))
		if !ok {
			writeError(w, http.StatusNotFound, "candidate not found")
			return
		}
		writeJSON(w, http.StatusOK, c)
	})

	r.Post("/candidates/{email}", func(w http.ResponseWriter, req *http.Request) {
		email := chi.URLParam(req, "email")

		var body struct {
			Status         *string `json:"status"`
			ToggleFavorite bool    `json:"toggle_favorite"`
			Note           *struct {
				Text   string `json:"text"`
				Author string `json:"author"`
			} `json:"note"`
			Comments    *string `json:"comments"`
			CallLog     *string `json:"call_log"`
			CurrentComp *string `json:"current_comp"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ctx := req.Context()
		if body.Status != nil {
			if err := p.SetStatus(ctx, email, model.Status(*body.Status)); err != nil {
				writeMutationError(w, err)
				return
			}
		}
		if body.ToggleFavorite {
			if err := p.ToggleFavorite(ctx, email); err != nil {
				writeMutationError(w, err)
				return
			}
		}
		if body.Note != nil {
			if err := p.AddNote(ctx, email, body.Note.Text, body.Note.Author); err != nil {
				writeMutationError(w, err)
				return
			}
		}
		if body.Comments != nil || body.CallLog != nil || body.CurrentComp != nil {
			if err := p.UpdateEditable(ctx, email, body.Comments, body.CallLog, body.CurrentComp); err != nil {
				writeMutationError(w, err)
				return
			}
		}

		c, ok := p.Candidate(email)
		if !ok {
			writeError(w, http.StatusNotFound, "candidate not found")
			return
		}
		writeJSON(w, http.StatusOK, c)
	})

	r.Post("/candidates/{email}/analyze", func(w http.ResponseWriter, req *http.Request) {
		c, err := p.AnalyzeNow(req.Context(), chi.URLParam(req, "email"))
		switch {
		case eris.Is(err, pipeline.ErrCandidateNotFound):
			writeError(w, http.StatusNotFound, "candidate not found")
		case eris.Is(err, pipeline.ErrAnalysisInProgress):
			writeError(w, http.StatusConflict, "analysis already in progress")
		case err != nil:
			zap.L().Error("on-demand analysis failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "analysis failed")
		default:
			writeJSON(w, http.StatusOK, c)
		}
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMutationError(w http.ResponseWriter, err error) {
	if eris.Is(err, pipeline.ErrCandidateNotFound) {
		writeError(w, http.StatusNotFound, "candidate not found")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
