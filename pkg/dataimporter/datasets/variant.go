package datasets

// VariantMode says how the platform files of a dataset combine. It is
// decided once per load from the files actually present.
type VariantMode string

const (
	VariantModeLegacyOnly       VariantMode = "legacy-only"
	VariantModeExtendedOnly     VariantMode = "extended-only"
	VariantModeBothPresentMerge VariantMode = "both-present-merge"
)

// VariantModeFor inspects which platform variant files exist. With neither
// present the version's native variant is used.
func (m Manifest) VariantModeFor(present func(FileName) bool) VariantMode {
	legacy, extended := false, false

	for _, file := range m.Files {
		if file.Role == FileRoleUnused || !present(file.Name) {
			continue
		}

		switch file.Variant {
		case VariantLegacy:
			legacy = true
		case VariantExtended:
			extended = true
		}
	}

	switch {
	case legacy && extended:
		return VariantModeBothPresentMerge
	case legacy:
		return VariantModeLegacyOnly
	case extended:
		return VariantModeExtendedOnly
	case m.Platforms == VariantLegacy:
		return VariantModeLegacyOnly
	default:
		return VariantModeExtendedOnly
	}
}

// Reads reports whether files of variant are decoded under mode.
func (mode VariantMode) Reads(variant Variant) bool {
	switch variant {
	case VariantLegacy:
		return mode != VariantModeExtendedOnly
	case VariantExtended:
		return mode != VariantModeLegacyOnly
	default:
		return true
	}
}
