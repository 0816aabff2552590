// Package archive produces and unpacks the compressed snapshot archives.
// Dumps can be large, so both directions stream through tar and gzip without
// buffering whole files in memory.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Ext is appended to the source directory name to form the archive path.
const Ext = ".tar.gz"

// ErrCorruptArchive reports a malformed or truncated archive.
var ErrCorruptArchive = errors.New("corrupt archive")

// Archive compresses the full contents of sourceDir into a single archive
// file at <sourceDir>.tar.gz and returns that path. Entry names are relative
// to sourceDir. The source directory is left in place.
func Archive(sourceDir string) (string, error) {
	outPath := filepath.Clean(sourceDir) + Ext

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create archive %s: %w", outPath, err)
	}
	defer out.Close()

	gz, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("init gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)

	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", sourceDir, err)
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("finalize tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("finalize gzip: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close archive %s: %w", outPath, err)
	}

	return outPath, nil
}

// Extract decompresses archivePath's full contents into destDir, creating it
// if absent. A malformed archive is reported as ErrCorruptArchive.
func Extract(archivePath, destDir string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer in.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extract dir %s: %w", destDir, err)
	}

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, archivePath, err)
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create dir for %s: %w", target, err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, archivePath, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", target, err)
			}
		default:
			// Dump trees only contain regular files and directories.
		}
	}
}

// securePath joins name under destDir, rejecting entries that escape it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes destination", ErrCorruptArchive, name)
	}
	return target, nil
}
