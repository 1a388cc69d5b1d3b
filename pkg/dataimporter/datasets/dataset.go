package datasets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DataSet is one HRDF export unpacked into a directory.
type DataSet struct {
	Identifier string
	Path       string
	Manifest   Manifest

	// files maps the upper case file name to the name found on disk.
	files map[FileName]string
}

// OpenDataSet indexes the files of the directory at path. Names are matched
// case-insensitively since exports differ in the case they use.
func OpenDataSet(path string, version Version) (*DataSet, error) {
	manifest, err := GetManifest(version)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset directory: %w", err)
	}

	dataset := &DataSet{
		Identifier: fmt.Sprintf("%s@%s", filepath.Base(path), version.Short()),
		Path:       path,
		Manifest:   manifest,
		files:      map[FileName]string{},
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		dataset.files[FileName(strings.ToUpper(entry.Name()))] = entry.Name()
	}

	return dataset, nil
}

func (d *DataSet) Has(name FileName) bool {
	_, ok := d.files[name]
	return ok
}

// Missing lists the mandatory files of the manifest that are not present.
func (d *DataSet) Missing() []FileName {
	var missing []FileName
	for _, file := range d.Manifest.Mandatory() {
		if !d.Has(file.Name) {
			missing = append(missing, file.Name)
		}
	}

	return missing
}

func (d *DataSet) Open(name FileName) (io.ReadCloser, error) {
	actual, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}

	return os.Open(filepath.Join(d.Path, actual))
}
