package datasets

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	version, err := ParseVersion("2.0.5")
	require.NoError(t, err)
	assert.Equal(t, Version2_0_5, version)

	version, err = ParseVersion("V_5_40_41_2_0_7")
	require.NoError(t, err)
	assert.Equal(t, Version2_0_7, version)
	assert.Equal(t, "2.0.7", version.Short())

	version, err = ParseVersion("")
	require.NoError(t, err)
	assert.Equal(t, Latest, version)

	_, err = ParseVersion("2.0.3")
	assert.Error(t, err)
}

func TestEmbeddedManifests(t *testing.T) {
	all, err := Manifests()
	require.NoError(t, err)
	require.Len(t, all, len(Versions()))

	for _, manifest := range all {
		var mandatory []FileName
		for _, file := range manifest.Mandatory() {
			mandatory = append(mandatory, file.Name)
		}
		assert.ElementsMatch(t, []FileName{FileECKDATEN, FileBITFELD, FileBAHNHOF, FileFPLAN}, mandatory, manifest.Version)

		stopTypes, ok := manifest.File(manifest.StopTypes)
		require.True(t, ok)
		assert.Equal(t, FileRoleOptional, stopTypes.Role)

		german, ok := manifest.File(FileBETRIEBDE)
		require.True(t, ok)
		assert.Equal(t, LanguageGerman, german.Language)
	}
}

func TestVersionDifferences(t *testing.T) {
	legacy, err := GetManifest(Version2_0_4)
	require.NoError(t, err)
	assert.Equal(t, 4, legacy.AttributeDescriptionColumn)
	assert.Equal(t, FileBHFART60, legacy.StopTypes)

	bhfart, ok := legacy.File(FileBHFART)
	require.True(t, ok)
	assert.Equal(t, FileRoleUnused, bhfart.Role)

	current, err := GetManifest(Version2_0_7)
	require.NoError(t, err)
	assert.Equal(t, 5, current.AttributeDescriptionColumn)
	assert.Equal(t, FileBHFART, current.StopTypes)
	assert.Equal(t, VariantExtended, current.Platforms)

	for _, file := range current.Readable() {
		assert.NotEqual(t, FileBHFART60, file.Name)
	}
}

func TestReadManifestsRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"manifests/a.yaml": {Data: []byte("version: V_5_40_41_2_0_4\n---\nversion: V_5_40_41_2_0_4\n")},
	}

	_, err := readManifests(fsys)
	assert.Error(t, err)
}

func TestVariantModeFor(t *testing.T) {
	manifest, err := GetManifest(Version2_0_6)
	require.NoError(t, err)

	presentOf := func(names ...FileName) func(FileName) bool {
		return func(name FileName) bool {
			for _, n := range names {
				if n == name {
					return true
				}
			}
			return false
		}
	}

	assert.Equal(t, VariantModeLegacyOnly, manifest.VariantModeFor(presentOf(FileGLEIS, FileGLEISWGS)))
	assert.Equal(t, VariantModeExtendedOnly, manifest.VariantModeFor(presentOf(FileGLEISEWGS)))
	assert.Equal(t, VariantModeBothPresentMerge, manifest.VariantModeFor(presentOf(FileGLEIS, FileGLEISELV95)))
	assert.Equal(t, VariantModeLegacyOnly, manifest.VariantModeFor(presentOf()))

	assert.True(t, VariantModeBothPresentMerge.Reads(VariantLegacy))
	assert.False(t, VariantModeExtendedOnly.Reads(VariantLegacy))
	assert.False(t, VariantModeLegacyOnly.Reads(VariantExtended))
	assert.True(t, VariantModeLegacyOnly.Reads(VariantNone))
}
