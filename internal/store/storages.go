package store

import "github.com/hoshinolab/fortune-gate/internal/logger"

type Storages struct {
	IdentityRepository IdentityRepository
}

func NewStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		IdentityRepository: NewIdentityRepository(db, logger),
	}
}
