package storage

import (
	"os"

	"github.com/spf13/afero"
)

type DiskConfig struct {
	BasePath string `yaml:"BasePath"`
}

// NewDisk opens a Store on the local disk, creating BasePath if needed.
func NewDisk(c DiskConfig) (*Store, error) {
	if err := os.MkdirAll(c.BasePath, 0755); err != nil {
		return nil, err
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), c.BasePath), c.BasePath), nil
}
