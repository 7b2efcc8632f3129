package http

import (
	"net/http"

	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/utils"
)

// defaultMaxBlobBytes caps the size of an uploaded payload.
const defaultMaxBlobBytes int64 = 1 << 20

type Handler struct {
	services *service.Services
	token    config.RelayToken

	maxBlobBytes int64
	ids          *utils.UUIDGenerator

	logger *logger.Logger
}

func NewHandler(services *service.Services, token config.RelayToken, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:     services,
		token:        token,
		maxBlobBytes: defaultMaxBlobBytes,
		ids:          utils.NewUUIDGenerator(),
		logger:       logger,
	}
}

// logFor returns the request-scoped logger installed by withTraceID.
func logFor(r *http.Request) *logger.Logger {
	return logger.FromRequest(r)
}
