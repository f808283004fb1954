package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/flashblog/flashblog-server/internal/config"
	"github.com/flashblog/flashblog-server/internal/logger"
	"github.com/flashblog/flashblog-server/internal/otp"
	"github.com/flashblog/flashblog-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "flashblog.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// OTPStoreHandle wraps the one-time code store with shutdown capability.
type OTPStoreHandle struct {
	*otp.Store
}

// Shutdown implements do.Shutdownable.
func (h *OTPStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideOTPStore provides the Badger-backed one-time code store.
func ProvideOTPStore(i do.Injector) (*OTPStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	otpPath := filepath.Join(cfg.Data.BasePath, "otp")
	codes, err := otp.New(otp.Options{
		Path:   otpPath,
		Secret: cfg.Auth.ResetCodeSecret,
		TTL:    cfg.Auth.ResetCodeTTL,
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("One-time code store initialized",
		"path", otpPath,
		"ttl", cfg.Auth.ResetCodeTTL,
	)

	return &OTPStoreHandle{Store: codes}, nil
}
