package util

import (
	"os"
	"strings"
)

// GetEnvironmentVariables returns the variables whose name starts with
// prefix, keyed by the rest of the name.
func GetEnvironmentVariables(prefix string) map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], prefix) {
			continue
		}

		environmentVariables[strings.TrimPrefix(pair[0], prefix)] = pair[1]
	}

	return environmentVariables
}
