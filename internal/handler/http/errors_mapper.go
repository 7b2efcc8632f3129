package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-secure-vault/internal/app"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/store"
	"github.com/MKhiriev/go-secure-vault/internal/zksync"
)

type errorResponse struct {
	status int
	msg    string
}

// errorResponses is checked in order; the first match wins.
var errorResponses = []struct {
	target error
	resp   errorResponse
}{
	{service.ErrNoOwner, errorResponse{http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid}},
	{service.ErrInvalidRecordID, errorResponse{http.StatusBadRequest, app.MsgInvalidRecordID}},
	{zksync.ErrInvalidPayload, errorResponse{http.StatusBadRequest, app.MsgInvalidPayload}},
	{store.ErrBlobNotFound, errorResponse{http.StatusNotFound, app.MsgBlobNotFound}},
	{store.ErrTransient, errorResponse{http.StatusServiceUnavailable, app.MsgServiceUnavailable}},
}

func responseFromError(err error) errorResponse {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return errorResponse{http.StatusRequestEntityTooLarge, app.MsgPayloadTooLarge}
	}

	for _, e := range errorResponses {
		if errors.Is(err, e.target) {
			return e.resp
		}
	}
	return errorResponse{http.StatusInternalServerError, app.MsgInternalServerError}
}

// writeError logs err with the request logger and answers with the mapped
// status and message. The body never echoes err itself.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	resp := responseFromError(err)
	log := logFor(r)
	if resp.status >= http.StatusInternalServerError {
		log.Err(err).Msg(msg)
	} else {
		log.Warn().Err(err).Msg(msg)
	}
	http.Error(w, resp.msg, resp.status)
}
