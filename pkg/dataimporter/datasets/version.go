package datasets

import (
	"fmt"
	"strings"
)

// Version identifies one revision of the HRDF exchange format.
type Version string

const (
	Version2_0_4 Version = "V_5_40_41_2_0_4"
	Version2_0_5 Version = "V_5_40_41_2_0_5"
	Version2_0_6 Version = "V_5_40_41_2_0_6"
	Version2_0_7 Version = "V_5_40_41_2_0_7"
)

// Latest is the version used when none is configured.
const Latest = Version2_0_7

func Versions() []Version {
	return []Version{Version2_0_4, Version2_0_5, Version2_0_6, Version2_0_7}
}

// ParseVersion accepts the full version name or its short form, e.g. "2.0.7".
func ParseVersion(value string) (Version, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Latest, nil
	}

	for _, version := range Versions() {
		if string(version) == value || version.Short() == value {
			return version, nil
		}
	}

	return "", fmt.Errorf("unsupported HRDF version %q", value)
}

// Short returns the format revision without the 5.40.41 prefix.
func (v Version) Short() string {
	return strings.ReplaceAll(strings.TrimPrefix(string(v), "V_5_40_41_"), "_", ".")
}

func (v Version) String() string {
	return string(v)
}
