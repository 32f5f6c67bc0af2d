// Package httpapi exposes the five endpoints of the ingest service over
// the standard library's net/http ServeMux, translating apperror kinds
// to HTTP statuses through the one table in internal/apperror.
package httpapi

import (
	"net/http"

	"github.com/catalogforge/imgingest/internal/assembler"
	"github.com/catalogforge/imgingest/internal/attach"
	"github.com/catalogforge/imgingest/internal/chunkcoordinator"
	"github.com/catalogforge/imgingest/internal/logging"
	"github.com/catalogforge/imgingest/internal/store"
)

// Server wires the core operations to HTTP handlers.
type Server struct {
	uploads     *store.UploadRepository
	images      *store.ImageRepository
	coordinator *chunkcoordinator.Coordinator
	assembler   *assembler.Assembler
	resolver    *attach.Resolver
	log         *logging.Logger
	apiKey      string
}

func New(uploads *store.UploadRepository, images *store.ImageRepository, coordinator *chunkcoordinator.Coordinator, asm *assembler.Assembler, resolver *attach.Resolver, log *logging.Logger, apiKey string) *Server {
	return &Server{
		uploads:     uploads,
		images:      images,
		coordinator: coordinator,
		assembler:   asm,
		resolver:    resolver,
		log:         log,
		apiKey:      apiKey,
	}
}

// Router builds the ServeMux with all five endpoints behind the
// request-logging and API-key middleware.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/chunk", s.handleUploadChunk)
	mux.HandleFunc("POST /upload/complete", s.handleCompleteUpload)
	mux.HandleFunc("GET /upload/{upload_id}/status", s.handleStatus)
	mux.HandleFunc("GET /upload/{upload_id}/ready", s.handleReady)
	mux.HandleFunc("POST /upload/attach-to-product", s.handleAttachToProduct)

	return chain(mux, logRequests(s.log), requireAPIKey(s.apiKey, s.log))
}
