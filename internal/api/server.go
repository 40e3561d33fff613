package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studyforge/internal/cache"
	"studyforge/internal/config"
	"studyforge/internal/models"
	"studyforge/internal/storage"
	"studyforge/internal/util"
	"studyforge/internal/workflows"

	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

var allowedUploadTypes = map[string]string{
	".pdf":  "pdf",
	".txt":  "text",
	".md":   "text",
	".text": "text",
}

type Server struct {
	cfg       config.Config
	db        *storage.DB
	docRepo   *storage.DocumentRepo
	guideRepo *storage.StudyGuideRepo
	concepts  *storage.ConceptRepo
	docCache  *cache.DocumentCache
	temporal  tclient.Client
	log       *zap.SugaredLogger
}

func NewServer(cfg config.Config, db *storage.DB, store cache.Store, temporal tclient.Client, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:       cfg,
		db:        db,
		docRepo:   storage.NewDocumentRepo(db),
		guideRepo: storage.NewStudyGuideRepo(db),
		concepts:  storage.NewConceptRepo(db),
		docCache:  cache.NewDocumentCache(store),
		temporal:  temporal,
		log:       log,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/upload", s.handleUpload)
	mux.HandleFunc("/documents/status/", s.handleJobStatus)
	mux.HandleFunc("/documents/", s.handleDocumentScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	docs, err := s.docRepo.ListDocuments(r.Context(), 100)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleUpload accepts a multipart file, records the document, and starts
// the processing workflow. The response carries the job id used for status
// polling.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	fh, ok := singleFile(r.MultipartForm.File)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided"))
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	fileType, supported := allowedUploadTypes[ext]
	if !supported {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported file type %s", ext))
		return
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("file too large"))
		return
	}
	detailLevel := r.FormValue("detail_level")
	if detailLevel == "" {
		detailLevel = "standard"
	}

	documentID := uuid.NewString()
	savedPath, checksum, err := s.saveUpload(documentID, fh, ext)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	doc := models.Document{
		DocumentID:   documentID,
		Filename:     filepath.Base(savedPath),
		OriginalName: fh.Filename,
		FilePath:     savedPath,
		FileSize:     fh.Size,
		FileType:     fileType,
		Checksum:     checksum,
		Status:       "uploaded",
	}
	if err := s.docRepo.InsertDocument(r.Context(), doc); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	jobID := "job-" + documentID
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:        jobID,
		TaskQueue: s.cfg.TemporalTaskQueue,
	}, workflows.ProcessDocumentWorkflow, workflows.ProcessDocumentInput{
		JobID:       jobID,
		DocumentID:  documentID,
		FilePath:    savedPath,
		DetailLevel: detailLevel,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	s.log.Infow("document accepted", "document_id", documentID, "job_id", jobID, "file", fh.Filename)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      jobID,
		"document_id": documentID,
		"run_id":      we.GetRunID(),
	})
}

// handleJobStatus queries the owning workflow for the job record. Unknown
// job ids map to 404.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/documents/status/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}

	resp, err := s.temporal.QueryWorkflow(r.Context(), jobID, "", workflows.QueryGetJobStatus)
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			writeErr(w, http.StatusNotFound, fmt.Errorf("job not found: %s", jobID))
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	var status workflows.JobStatus
	if err := resp.Get(&status); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDocumentScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/documents/"), "/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" || len(parts) > 2 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	documentID := parts[0]
	if len(parts) == 1 {
		s.handleDocument(w, r, documentID)
		return
	}

	switch parts[1] {
	case "study-guide":
		s.handleStudyGuide(w, r, documentID)
	case "graph":
		s.handleGraph(w, r, documentID)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request, documentID string) {
	doc, err := s.docRepo.GetDocument(r.Context(), documentID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStudyGuide(w http.ResponseWriter, r *http.Request, documentID string) {
	guide, content, err := s.guideRepo.GetLatestForDocument(r.Context(), documentID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no study guide for document %s", documentID))
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"study_guide": guide,
		"content":     content,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request, documentID string) {
	// The cached analysis is fresher than the persisted rows when present.
	if analysis, ok, err := s.docCache.GetAnalysis(r.Context(), documentID); err == nil && ok {
		writeJSON(w, http.StatusOK, analysis.KnowledgeGraph)
		return
	}
	graph, err := s.concepts.GetGraph(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if len(graph.Nodes) == 0 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no graph for document %s", documentID))
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) saveUpload(documentID string, fh *multipart.FileHeader, ext string) (path, checksum string, err error) {
	if err := util.EnsureDir(s.cfg.UploadRoot); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	finalPath := util.SafeJoin(s.cfg.UploadRoot, documentID+ext)
	dst, err := os.Create(finalPath)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()
	checksum, err = util.Checksum(io.TeeReader(src, dst))
	if err != nil {
		return "", "", fmt.Errorf("write upload file: %w", err)
	}
	return finalPath, checksum, nil
}

func singleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	if files := m["file"]; len(files) > 0 {
		return files[0], true
	}
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

// Serve runs the HTTP server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.APIAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

// toAPIError maps failures to user-safe payloads; raw errors never reach the
// response body for 5xx.
func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "SF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "SF-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "SF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "SF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "SF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "SF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "SF-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "SF-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "no file provided"):
			msg = "No file was provided."
		case strings.Contains(raw, "unsupported file type"):
			msg = "Unsupported file type. Upload a PDF, TXT, or Markdown file."
		case strings.Contains(raw, "file too large"):
			msg = "File exceeds the upload size limit."
		case strings.Contains(raw, "job not found"):
			msg = "No job exists with that id."
		case strings.Contains(raw, "no study guide"):
			msg = "No study guide has been generated for this document yet."
		case strings.Contains(raw, "no graph"):
			msg = "No knowledge graph is available for this document yet."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
