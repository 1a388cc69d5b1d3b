package datasets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed manifests/*.yaml
var manifestFiles embed.FS

type FileName string

const (
	FileECKDATEN    FileName = "ECKDATEN"
	FileBITFELD     FileName = "BITFELD"
	FileFEIERTAG    FileName = "FEIERTAG"
	FileBAHNHOF     FileName = "BAHNHOF"
	FileBFKOORDLV95 FileName = "BFKOORD_LV95"
	FileBFKOORDWGS  FileName = "BFKOORD_WGS"
	FileBFPRIOS     FileName = "BFPRIOS"
	FileKMINFO      FileName = "KMINFO"
	FileUMSTEIGB    FileName = "UMSTEIGB"
	FileBHFART      FileName = "BHFART"
	FileBHFART60    FileName = "BHFART_60"
	FileBETRIEBDE   FileName = "BETRIEB_DE"
	FileBETRIEBEN   FileName = "BETRIEB_EN"
	FileBETRIEBFR   FileName = "BETRIEB_FR"
	FileBETRIEBIT   FileName = "BETRIEB_IT"
	FileLINIE       FileName = "LINIE"
	FileRICHTUNG    FileName = "RICHTUNG"
	FileZUGART      FileName = "ZUGART"
	FileATTRIBUT    FileName = "ATTRIBUT"
	FileINFOTEXTDE  FileName = "INFOTEXT_DE"
	FileINFOTEXTEN  FileName = "INFOTEXT_EN"
	FileINFOTEXTFR  FileName = "INFOTEXT_FR"
	FileINFOTEXTIT  FileName = "INFOTEXT_IT"
	FileGLEIS       FileName = "GLEIS"
	FileGLEISLV95   FileName = "GLEIS_LV95"
	FileGLEISWGS    FileName = "GLEIS_WGS"
	FileGLEISELV95  FileName = "GLEISE_LV95"
	FileGLEISEWGS   FileName = "GLEISE_WGS"
	FileUMSTEIGV    FileName = "UMSTEIGV"
	FileUMSTEIGL    FileName = "UMSTEIGL"
	FileUMSTEIGZ    FileName = "UMSTEIGZ"
	FileDURCHBI     FileName = "DURCHBI"
	FileMETABHF     FileName = "METABHF"
	FileFPLAN       FileName = "FPLAN"
)

type FileRole string

const (
	FileRoleMandatory FileRole = "mandatory"
	FileRoleOptional  FileRole = "optional"
	// FileRoleUnused files may ship with a dataset but are never read.
	FileRoleUnused FileRole = "unused"
)

type Family string

const (
	FamilyMetadata    Family = "metadata"
	FamilyCalendar    Family = "calendar"
	FamilyStops       Family = "stops"
	FamilyOperators   Family = "operators"
	FamilyRegistries  Family = "registries"
	FamilyPlatforms   Family = "platforms"
	FamilyTransfers   Family = "transfers"
	FamilyConnections Family = "connections"
	FamilyJourneys    Family = "journeys"
)

// Variant tags files that belong to one side of a version-variant group.
type Variant string

const (
	VariantNone     Variant = ""
	VariantLegacy   Variant = "legacy"
	VariantExtended Variant = "extended"
)

// Language codes used by localized files.
const (
	LanguageGerman  = "de"
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
	LanguageItalian = "it"
)

type FileSpec struct {
	Name     FileName `yaml:"name"`
	Role     FileRole `yaml:"role"`
	Family   Family   `yaml:"family"`
	Variant  Variant  `yaml:"variant"`
	Language string   `yaml:"language"`
}

// Manifest lists the files of one format version and the grammar settings
// that differ between versions.
type Manifest struct {
	Version Version `yaml:"version"`
	// Platforms is the variant the version natively ships.
	Platforms Variant `yaml:"platforms"`
	// AttributeDescriptionColumn is the column ATTRIBUT descriptions start at.
	AttributeDescriptionColumn int `yaml:"attribute_description_column"`
	// StopTypes names the file carrying stop restrictions and SLOIDs.
	StopTypes FileName   `yaml:"stop_types"`
	Files     []FileSpec `yaml:"files"`
}

type manifestDocument struct {
	Common []FileSpec `yaml:"common"`
	Manifest `yaml:",inline"`
}

var (
	loadManifests sync.Once
	manifests     map[Version]Manifest
	manifestsErr  error
)

// GetManifest returns the embedded manifest of version.
func GetManifest(version Version) (Manifest, error) {
	all, err := Manifests()
	if err != nil {
		return Manifest{}, err
	}

	for _, manifest := range all {
		if manifest.Version == version {
			return manifest, nil
		}
	}

	return Manifest{}, fmt.Errorf("no manifest for HRDF version %q", version)
}

// Manifests returns every embedded manifest ordered by version.
func Manifests() ([]Manifest, error) {
	loadManifests.Do(func() {
		manifests, manifestsErr = readManifests(manifestFiles)
	})
	if manifestsErr != nil {
		return nil, manifestsErr
	}

	all := make([]Manifest, 0, len(manifests))
	for _, version := range Versions() {
		if manifest, ok := manifests[version]; ok {
			all = append(all, manifest)
		}
	}

	return all, nil
}

func readManifests(fsys fs.FS) (map[Version]Manifest, error) {
	paths, err := fs.Glob(fsys, "manifests/*.yaml")
	if err != nil {
		return nil, err
	}

	var common []FileSpec
	var versions []Manifest

	for _, path := range paths {
		contents, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(bytes.NewReader(contents))
		for {
			var document manifestDocument
			err := decoder.Decode(&document)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("manifest %s: %w", path, err)
			}

			common = append(common, document.Common...)
			if document.Version != "" {
				versions = append(versions, document.Manifest)
			}
		}
	}

	loaded := map[Version]Manifest{}
	for _, manifest := range versions {
		if _, err := ParseVersion(string(manifest.Version)); err != nil {
			return nil, err
		}
		if _, exists := loaded[manifest.Version]; exists {
			return nil, fmt.Errorf("manifest for %s defined twice", manifest.Version)
		}

		files := slices.Clone(common)
		for _, file := range manifest.Files {
			index := slices.IndexFunc(files, func(f FileSpec) bool { return f.Name == file.Name })
			if index >= 0 {
				files[index] = file
			} else {
				files = append(files, file)
			}
		}
		manifest.Files = files

		loaded[manifest.Version] = manifest
	}

	return loaded, nil
}

// File returns the specification of name, if the manifest lists it.
func (m Manifest) File(name FileName) (FileSpec, bool) {
	for _, file := range m.Files {
		if file.Name == name {
			return file, true
		}
	}

	return FileSpec{}, false
}

// Mandatory lists the files a dataset of this version must contain.
func (m Manifest) Mandatory() []FileSpec {
	return m.withRole(FileRoleMandatory)
}

// Readable lists every mandatory and optional file.
func (m Manifest) Readable() []FileSpec {
	var files []FileSpec
	for _, file := range m.Files {
		if file.Role != FileRoleUnused {
			files = append(files, file)
		}
	}

	return files
}

func (m Manifest) withRole(role FileRole) []FileSpec {
	var files []FileSpec
	for _, file := range m.Files {
		if file.Role == role {
			files = append(files, file)
		}
	}

	return files
}
