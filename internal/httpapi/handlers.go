package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/catalogforge/imgingest/internal/apperror"
	"github.com/catalogforge/imgingest/internal/chunkcoordinator"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/form"
)

const maxChunkMemory = 32 << 20 // 32 MiB; reference client chunks at 5 MiB

func (s *Server) handleUploadChunk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxChunkMemory); err != nil {
		writeValidationError(w, map[string][]string{"_form": {"failed to parse multipart body"}})
		return
	}

	var f uploadChunkForm
	if errs := form.DecodeAndValidateWithContext(r.Context(), r, &f); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	file, _, err := r.FormFile("chunk")
	if err != nil {
		writeValidationError(w, map[string][]string{"chunk": {"missing chunk file part"}})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperror.Wrap(apperror.KindInternalIO, "read chunk body", err))
		return
	}

	err = s.coordinator.Receive(r.Context(), chunkcoordinator.Chunk{
		UploadID:         f.UploadID,
		Index:            f.ChunkIndex,
		TotalChunks:      f.TotalChunks,
		Checksum:         f.ChunkChecksum,
		OriginalFilename: f.FileName,
		DeclaredSize:     f.FileSize,
		MIMEType:         f.MimeType,
		Data:             data,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"received_chunk": f.ChunkIndex,
	})
}

func (s *Server) handleCompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req completeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string][]string{"_body": {"invalid JSON body"}})
		return
	}
	if fields := validateCompleteUploadRequest(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	if err := s.assembler.CompleteUpload(r.Context(), req.UploadID, req.FileChecksum); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "assembled",
		"upload_id": req.UploadID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("upload_id")
	sess, err := s.uploads.Get(r.Context(), uploadID)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, apperror.New(apperror.KindNotFound, "upload not found"))
			return
		}
		writeError(w, apperror.Wrap(apperror.KindInternalIO, "load upload", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upload_id":     sess.UploadID,
		"status":        sess.Status,
		"file_size":     sess.FileSize,
		"file_checksum": sess.FileChecksum,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("upload_id")
	if _, err := s.uploads.Get(r.Context(), uploadID); err != nil {
		if err == store.ErrNotFound {
			writeError(w, apperror.New(apperror.KindNotFound, "upload not found"))
			return
		}
		writeError(w, apperror.Wrap(apperror.KindInternalIO, "load upload", err))
		return
	}

	_, err := s.images.Get(r.Context(), uploadID, store.VariantOriginal)
	ready := err == nil
	writeJSON(w, http.StatusOK, map[string]bool{"ready": ready})
}

func (s *Server) handleAttachToProduct(w http.ResponseWriter, r *http.Request) {
	var req attachToProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string][]string{"_body": {"invalid JSON body"}})
		return
	}
	if fields := validateAttachToProductRequest(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	result, err := s.resolver.AttachToProduct(r.Context(), req.UploadID, req.SKU, req.IsPrimary)
	if err != nil {
		if kind, ok := apperror.KindOf(err); ok && kind == apperror.KindNotReady {
			s.writeNotReady(w, r.Context(), req.UploadID)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"image_id":   result.ImageID,
		"product_id": result.ProductID,
		"is_primary": result.IsPrimary,
	})
}

// writeNotReady distinguishes the two flavors of "come back later" the
// attach contract promises: the upload hasn't finished receiving
// chunks, or it is being (re)processed in the background. An upload
// with an assembled source blob (assembling, or reset by the resolver's
// recovery path) reports "processing".
func (s *Server) writeNotReady(w http.ResponseWriter, ctx context.Context, uploadID string) {
	sess, err := s.uploads.Get(ctx, uploadID)
	status := "uploading"
	var processingTime float64
	if err == nil {
		if sess.Status == store.StatusAssembling || sess.Path != "" {
			status = "processing"
		}
		processingTime = time.Since(sess.UpdatedAt).Seconds()
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":          status,
		"processing_time": processingTime,
	})
}
