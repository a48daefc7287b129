// Where: cli/internal/infra/packager/packager.go
// What: Zip packaging and base64 encoding of function code.
// Why: Produce the archive artifact consumed by deploy and package commands.
package packager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/meta"
	log "github.com/sirupsen/logrus"
)

// ArchiveName returns "<name>.zip", or "<codeURI>.zip" when name is empty.
func ArchiveName(codeURI, name string) (string, error) {
	if name = strings.TrimSpace(name); name != "" {
		return name + meta.ArchiveExtension, nil
	}
	base := filepath.Base(filepath.Clean(strings.TrimSpace(codeURI)))
	if codeURI == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: cannot derive archive name from code uri %q", function.ErrConfiguration, codeURI)
	}
	return base + meta.ArchiveExtension, nil
}

// Packager zips code directories.
type Packager struct{}

// New constructs a Packager.
func New() Packager {
	return Packager{}
}

// Package writes every regular file under srcDir into archivePath, storing
// paths relative to srcDir. Symlinks to regular files are archived with the
// target's content. Paths in exclude (other archives of the same run) are
// never archived. It returns the archive entry names.
func (Packager) Package(ctx context.Context, srcDir, archivePath string, exclude ...string) ([]string, error) {
	if strings.TrimSpace(srcDir) == "" {
		return nil, fmt.Errorf("%w: missing the directory to zip up", function.ErrConfiguration)
	}
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: code directory %s is not valid", function.ErrConfiguration, srcDir)
	}
	archiveAbs, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(archiveAbs), 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(archiveAbs), ".bsam-package-*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	skip := map[string]bool{archiveAbs: true, tmpName: true}
	for _, path := range exclude {
		if abs, err := filepath.Abs(path); err == nil {
			skip[abs] = true
		}
	}
	entries, err := writeArchive(ctx, tmp, srcDir, skip)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return nil, err
	}
	if err := os.Rename(tmpName, archiveAbs); err != nil {
		_ = os.Remove(tmpName)
		return nil, err
	}
	log.Debugf("Packaged %d files from %s into %s", len(entries), srcDir, archiveAbs)
	return entries, nil
}

func writeArchive(ctx context.Context, out io.Writer, srcDir string, skip map[string]bool) ([]string, error) {
	writer := zip.NewWriter(out)
	entries := make([]string, 0)
	walkErr := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("%w: unreadable symlink %s: %w", function.ErrConfiguration, path, err)
			}
			// Linked directories are not descended.
			if !target.Mode().IsRegular() {
				return nil
			}
		} else if !entry.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if err := addFile(writer, path, name); err != nil {
			return err
		}
		entries = append(entries, name)
		return nil
	})
	if walkErr != nil {
		_ = writer.Close()
		return nil, walkErr
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return entries, nil
}

func addFile(writer *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}

// Encode returns the base64 text of the archive bytes.
func (Packager) Encode(archivePath string) (string, error) {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: zip file not found: %s", function.ErrConfiguration, archivePath)
		}
		return "", fmt.Errorf("read archive %s: %w", archivePath, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// List returns the entry names stored in the archive.
func (Packager) List(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	return names, nil
}
