package storage

import (
	"context"
	"time"
)

// FileMetadata represents metadata about a stored file
type FileMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// StoreOptions provides options for storing files
type StoreOptions struct {
	Overwrite bool `json:"overwrite,omitempty"`
}

// FileStorage keeps import files and their backups
type FileStorage interface {
	// Store saves data under key
	Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error

	// Retrieve gets a file by its storage key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes a file by its storage key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the files whose key starts with prefix, ordered by key
	List(ctx context.Context, prefix string) ([]FileMetadata, error)
}
