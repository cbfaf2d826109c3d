package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mholt/archives"
	log "github.com/sirupsen/logrus"
)

// Store is where datadir archives are shipped to.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// ArchiveDatadir writes a gzipped tarball of the datadir to out, with the
// datadir content at the root of the archive.
func ArchiveDatadir(ctx context.Context, datadir string, out io.Writer) error {
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		datadir: "",
	})
	if err != nil {
		return fmt.Errorf("failed to prepare files for archiving: %w", err)
	}

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, out, files); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// Run archives the datadir into a temporary file and uploads it to the store.
// It returns the key of the uploaded archive.
func Run(ctx context.Context, datadir string, store Store) (string, error) {
	key := fmt.Sprintf("spinwheel-backup-%s.tar.gz", time.Now().UTC().Format("2006-01-02-15-04-05"))

	tmp, err := os.CreateTemp("", "spinwheel-backup-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	// nolint:all
	defer os.Remove(tmp.Name())
	// nolint:all
	defer tmp.Close()

	if err := ArchiveDatadir(ctx, filepath.Clean(datadir), tmp); err != nil {
		return "", err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if err := store.Upload(ctx, key, tmp); err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	log.WithField("key", key).Infof("backed up datadir %s", datadir)
	return key, nil
}
