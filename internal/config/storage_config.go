package config

const (
	storageBackendVar    = "STORAGE_BACKEND"
	storagePathVar       = "STORAGE_PATH"
	storagePassphraseVar = "STORAGE_PASSPHRASE"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Storage struct {
	values *FileValues
}

var _ StorageConfig = Storage{}

// GetStorageBackend returns "file", "sqlite" or "memory".
func (s Storage) GetStorageBackend() string {
	return lookup(storageBackendVar, s.values.Storage.Backend, BackendFile)
}

// GetStoragePath returns the store location, or "" for the backend's default.
func (s Storage) GetStoragePath() string {
	return lookup(storagePathVar, s.values.Storage.Path, "")
}

func (s Storage) GetStoragePassphrase() string {
	return lookup(storagePassphraseVar, s.values.Storage.Passphrase, "")
}
