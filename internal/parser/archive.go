package parser

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pierrec/lz4"
)

// maxUnpacked bounds the decompressed size of an archive member.
const maxUnpacked = 512 << 20

// IsArchive reports whether name carries a compression extension Read unpacks.
func IsArchive(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".zip", ".lz4":
		return true
	}
	return false
}

// Unpack decompresses an archive held in r and returns the inner file name
// and its contents. Zip archives yield their largest regular file.
func Unpack(name string, r io.Reader) (string, []byte, error) {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return "", nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gr.Close()
		b, err := readLimited(gr)
		if err != nil {
			return "", nil, fmt.Errorf("gunzip %s: %w", name, err)
		}
		return name[:len(name)-len(ext)], b, nil
	case ".lz4":
		b, err := readLimited(lz4.NewReader(r))
		if err != nil {
			return "", nil, fmt.Errorf("lz4 %s: %w", name, err)
		}
		return name[:len(name)-len(ext)], b, nil
	case ".zip":
		return unpackZip(r)
	default:
		return "", nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
	}
}

func unpackZip(r io.Reader) (string, []byte, error) {
	raw, err := readLimited(r)
	if err != nil {
		return "", nil, fmt.Errorf("read zip: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	var largest *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largest == nil || f.UncompressedSize64 > largest.UncompressedSize64 {
			largest = f
		}
	}
	if largest == nil {
		return "", nil, fmt.Errorf("zip archive has no files")
	}
	rc, err := largest.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", largest.Name, err)
	}
	defer rc.Close()
	b, err := readLimited(rc)
	if err != nil {
		return "", nil, fmt.Errorf("unzip %s: %w", largest.Name, err)
	}
	return path.Base(largest.Name), b, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxUnpacked+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxUnpacked {
		return nil, fmt.Errorf("archive member exceeds %d bytes", maxUnpacked)
	}
	return b, nil
}
