package config

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants the server needs at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.BaseURL == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.App.LinkTokenTTL <= 0 || cfg.App.RecoveryTokenTTL <= 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
