package parquet

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileSystem is the narrow collaborator the writer needs to open output
// files, mirrored on the teacher's writer/parquet/fs.go so it can be
// replaced by a test double the same way fs_mock.go does.
type FileSystem interface {
	NewFileWriter(fileName string) (io.WriteCloser, error)
}

// NewFileSystem returns the real, os-backed FileSystem.
func NewFileSystem() FileSystem {
	return &osFileSystem{}
}

type osFileSystem struct{}

func (f *osFileSystem) NewFileWriter(fileName string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return nil, errors.New(err.Error())
	}

	fw, err := os.Create(fileName)
	if err != nil {
		return nil, errors.New(err.Error())
	}

	return fw, nil
}
