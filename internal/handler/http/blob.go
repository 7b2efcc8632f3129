package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/utils"
)

type listBlobsResponse struct {
	IDs []string `json:"ids"`
}

func (h *Handler) putBlob(w http.ResponseWriter, r *http.Request) {
	owner, recordID, err := blobTarget(r)
	if err != nil {
		writeError(w, r, err, "invalid blob target")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBlobBytes))
	if err != nil {
		writeError(w, r, err, "error reading request body")
		return
	}

	if err = h.services.BlobService.PutBlob(r.Context(), owner, recordID, payload); err != nil {
		writeError(w, r, err, "error storing blob")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getBlob(w http.ResponseWriter, r *http.Request) {
	owner, recordID, err := blobTarget(r)
	if err != nil {
		writeError(w, r, err, "invalid blob target")
		return
	}

	payload, err := h.services.BlobService.GetBlob(r.Context(), owner, recordID)
	if err != nil {
		writeError(w, r, err, "error loading blob")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func (h *Handler) listBlobs(w http.ResponseWriter, r *http.Request) {
	owner, _ := utils.GetOwnerFromContext(r.Context())

	ids, err := h.services.BlobService.ListBlobs(r.Context(), owner)
	if err != nil {
		writeError(w, r, err, "error listing blobs")
		return
	}

	writeJSON(w, r, http.StatusOK, listBlobsResponse{IDs: ids})
}

func (h *Handler) deleteBlob(w http.ResponseWriter, r *http.Request) {
	owner, recordID, err := blobTarget(r)
	if err != nil {
		writeError(w, r, err, "invalid blob target")
		return
	}

	if err = h.services.BlobService.DeleteBlob(r.Context(), owner, recordID); err != nil {
		writeError(w, r, err, "error deleting blob")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// blobTarget reads the owner set by auth and the unescaped record id.
func blobTarget(r *http.Request) (owner, recordID string, err error) {
	owner, ok := utils.GetOwnerFromContext(r.Context())
	if !ok {
		return "", "", service.ErrNoOwner
	}

	recordID, err = url.PathUnescape(chi.URLParam(r, "recordID"))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", service.ErrInvalidRecordID, err)
	}
	return owner, recordID, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, err, "error encoding response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
