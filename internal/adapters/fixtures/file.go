package fixtures

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"lightbnb/internal/domain"
)

// FileSource reads a data set from a directory.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource { return &FileSource{Dir: dir} }

func (s *FileSource) Load(ctx context.Context) (domain.Fixtures, error) {
	docs := make(map[string][]byte, 4)
	for _, name := range []string{UsersFile, PropertiesFile, ReservationsFile, ReviewsFile} {
		if err := ctx.Err(); err != nil {
			return domain.Fixtures{}, err
		}
		b, err := os.ReadFile(filepath.Join(s.Dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Fixtures{}, err
		}
		docs[name] = b
	}
	return Decode(docs)
}
