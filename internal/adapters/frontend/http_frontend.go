package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/config"
	"github.com/mikey/attrition-predictor/internal/core"
	"github.com/mikey/attrition-predictor/internal/metrics"
	"github.com/mikey/attrition-predictor/internal/ml"
	"github.com/mikey/attrition-predictor/internal/table"
	"github.com/mikey/attrition-predictor/internal/utils"
)

const (
	uploadField       = "file"
	multipartMemory   = 8 << 20
	maxLoggedNameSize = 128
	shutdownTimeout   = 10 * time.Second
)

// HTTPFrontend serves the upload page and the prediction API
type HTTPFrontend struct {
	service       *core.PredictionService
	reader        *table.Reader
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	server        config.ServerConfig
	prediction    config.PredictionConfig
	router        chi.Router
	httpServer    *http.Server
}

// NewHTTPFrontend creates a new HTTP frontend
func NewHTTPFrontend(
	service *core.PredictionService,
	reader *table.Reader,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	server config.ServerConfig,
	prediction config.PredictionConfig,
) *HTTPFrontend {
	f := &HTTPFrontend{
		service:       service,
		reader:        reader,
		textProcessor: textProcessor,
		logger:        logger,
		server:        server,
		prediction:    prediction,
		router:        chi.NewRouter(),
	}
	f.setupMiddleware()
	f.setupRoutes()
	return f
}

func (f *HTTPFrontend) setupMiddleware() {
	f.router.Use(middleware.RequestID)
	f.router.Use(middleware.RealIP)
	f.router.Use(f.requestLogger)
	f.router.Use(middleware.Recoverer)
}

func (f *HTTPFrontend) setupRoutes() {
	f.router.Get("/", f.handleIndex)
	f.router.Get("/healthz", f.handleHealth)

	f.router.Route("/api", func(r chi.Router) {
		r.Get("/schema", f.handleSchema)
		r.Post("/predictions", f.handlePredict)
		r.Get("/predictions/{id}", f.handleDownload)
	})

	if f.server.MetricsEnabled {
		f.router.Handle("/metrics", metrics.Handler())
	}
}

// Handler returns the router, mainly for tests
func (f *HTTPFrontend) Handler() http.Handler {
	return f.router
}

// Start binds the listen address and serves in the background
func (f *HTTPFrontend) Start() error {
	ln, err := net.Listen("tcp", f.server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.server.ListenAddress, err)
	}

	f.httpServer = &http.Server{
		Handler:      f.router,
		ReadTimeout:  f.server.ReadTimeout,
		WriteTimeout: f.server.WriteTimeout,
	}

	go func() {
		if err := f.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	f.logger.Info("HTTP frontend started",
		zap.String("address", ln.Addr().String()),
		zap.String("max_upload", humanize.Bytes(uint64(f.server.MaxUploadBytes))))
	return nil
}

// Stop gracefully shuts the server down
func (f *HTTPFrontend) Stop() error {
	if f.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return f.httpServer.Shutdown(ctx)
}

func (f *HTTPFrontend) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		f.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}

type errorResponse struct {
	Error          string   `json:"error"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

type previewResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type predictionResponse struct {
	ID           string                 `json:"id"`
	FileName     string                 `json:"file_name"`
	Rows         int                    `json:"rows"`
	ExtraColumns []string               `json:"extra_columns"`
	Warnings     []string               `json:"warnings"`
	Preview      previewResponse        `json:"preview"`
	Summary      core.PredictionSummary `json:"summary"`
	ModelVersion string                 `json:"model_version"`
	DownloadURL  string                 `json:"download_url,omitempty"`
}

type schemaResponse struct {
	Columns           []ml.Column `json:"columns"`
	Threshold         float64     `json:"threshold"`
	LabelColumn       string      `json:"label_column"`
	ProbabilityColumn string      `json:"probability_column"`
}

func (f *HTTPFrontend) handlePredict(w http.ResponseWriter, r *http.Request) {
	if f.server.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, f.server.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			f.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %s", humanize.Bytes(uint64(tooLarge.Limit))))
			return
		}
		f.writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		f.writeError(w, http.StatusBadRequest, fmt.Sprintf("missing upload field %q", uploadField))
		return
	}
	defer file.Close()

	name := header.Filename
	logName := f.textProcessor.TruncateText(name, maxLoggedNameSize)
	if !table.SupportedExtension(name) {
		f.writeError(w, http.StatusUnsupportedMediaType, "only .csv and .xlsx files are supported")
		return
	}

	f.logger.Info("Received upload",
		zap.String("file", logName),
		zap.String("size", humanize.Bytes(uint64(header.Size))))

	upload, err := f.reader.Read(name, file)
	if err != nil {
		f.logger.Info("Rejected unreadable upload", zap.String("file", logName), zap.Error(err))
		f.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := f.service.Predict(r.Context(), upload, name)
	if err != nil {
		var missing *core.MissingColumnsError
		var valueErr *ml.ValueError
		switch {
		case errors.As(err, &missing):
			f.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:          missing.Error(),
				MissingColumns: missing.Columns,
			})
		case errors.As(err, &valueErr):
			f.writeError(w, http.StatusBadRequest, valueErr.Error())
		default:
			f.logger.Error("Prediction failed", zap.String("file", logName), zap.Error(err))
			f.writeError(w, http.StatusInternalServerError, "prediction failed")
		}
		return
	}

	preview := result.Table.Head(f.prediction.PreviewRows)
	previewRows := preview.Rows
	if previewRows == nil {
		previewRows = [][]string{}
	}
	resp := predictionResponse{
		ID:           result.ID,
		FileName:     name,
		Rows:         result.Table.Len(),
		ExtraColumns: nonNil(result.Validation.Extra),
		Warnings:     nonNil(result.Warnings),
		Preview: previewResponse{
			Columns: preview.Header,
			Rows:    previewRows,
		},
		Summary:      result.Summary,
		ModelVersion: result.ModelVersion,
	}
	if result.Stored {
		resp.DownloadURL = "/api/predictions/" + result.ID
	}

	f.writeJSON(w, http.StatusOK, resp)
}

func (f *HTTPFrontend) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := f.service.Download(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrResultNotFound), errors.Is(err, core.ErrStoreDisabled):
			f.writeError(w, http.StatusNotFound, err.Error())
		default:
			f.logger.Error("Failed to load stored prediction", zap.String("id", id), zap.Error(err))
			f.writeError(w, http.StatusInternalServerError, "failed to load prediction")
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.prediction.DownloadName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(stored.Payload); err != nil {
		f.logger.Warn("Failed to write download", zap.String("id", id), zap.Error(err))
	}
}

func (f *HTTPFrontend) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := f.service.Schema(r.Context())
	if err != nil {
		f.writeError(w, http.StatusServiceUnavailable, "model unavailable")
		return
	}
	f.writeJSON(w, http.StatusOK, schemaResponse{
		Columns:           schema.Columns,
		Threshold:         f.prediction.Threshold,
		LabelColumn:       f.prediction.LabelColumn,
		ProbabilityColumn: f.prediction.ProbabilityColumn,
	})
}

func (f *HTTPFrontend) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := f.service.Schema(r.Context()); err != nil {
		f.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	f.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (f *HTTPFrontend) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexPage))
}

func (f *HTTPFrontend) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (f *HTTPFrontend) writeError(w http.ResponseWriter, status int, message string) {
	f.writeJSON(w, status, errorResponse{Error: message})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
