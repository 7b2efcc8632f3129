package service

import (
	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/store"
)

// Services groups the relay services used by the HTTP handler.
type Services struct {
	BlobService    BlobService
	AppInfoService AppInfoService
}

func NewServices(blobs store.BlobRepository, cfg *config.RelayConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.Version, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		BlobService:    NewBlobService(blobs, logger),
		AppInfoService: appInfo,
	}, nil
}
