// Package container handles physical access to model documents. A model is
// stored either as a plain XML file or inside a zip archive holding a
// model.xml entry; detection, reading, and write-back hide the difference
// from the rest of the tool.
package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// archiveEntryName is the XML entry an archive-wrapped model must contain.
const archiveEntryName = "model.xml"

// ErrUnknownContainer is returned when a file is neither plain XML nor a
// zip archive containing a model entry.
var ErrUnknownContainer = errors.New("could not determine file type or locate XML")

// Descriptor locates the XML document inside a model file.
type Descriptor struct {
	path         string
	archiveEntry string // empty for plain XML files
}

// Detect inspects a file and determines how its XML document is stored.
func Detect(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if strings.Contains(string(data), "<?xml") {
		return &Descriptor{path: path}, nil
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		for _, file := range reader.File {
			if file.Name == archiveEntryName {
				return &Descriptor{path: path, archiveEntry: file.Name}, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, path)
}

// Read returns the XML document text.
func (d *Descriptor) Read() (string, error) {
	if d.archiveEntry == "" {
		data, err := os.ReadFile(d.path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", d.path, err)
		}
		return string(data), nil
	}

	reader, err := zip.OpenReader(d.path)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", d.path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != d.archiveEntry {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open archive entry %s: %w", file.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("read archive entry %s: %w", file.Name, err)
		}
		return string(data), nil
	}

	return "", fmt.Errorf("%w: %s missing entry %s", ErrUnknownContainer, d.path, d.archiveEntry)
}

// Write stores the XML document back. For archives the whole zip is rebuilt
// with every sibling entry preserved; entries are stored uncompressed.
func (d *Descriptor) Write(xml string) error {
	if d.archiveEntry == "" {
		if err := os.WriteFile(d.path, []byte(xml), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", d.path, err)
		}
		return nil
	}

	reader, err := zip.OpenReader(d.path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", d.path, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, file := range reader.File {
		header := &zip.FileHeader{Name: file.Name, Method: zip.Store}
		entry, err := writer.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", file.Name, err)
		}

		if file.Name == d.archiveEntry {
			if _, err := entry.Write([]byte(xml)); err != nil {
				return fmt.Errorf("write archive entry %s: %w", file.Name, err)
			}
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open archive entry %s: %w", file.Name, err)
		}
		if _, err := io.Copy(entry, rc); err != nil {
			rc.Close()
			return fmt.Errorf("copy archive entry %s: %w", file.Name, err)
		}
		rc.Close()
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	if err := os.WriteFile(d.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}
