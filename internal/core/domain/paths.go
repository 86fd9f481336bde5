package domain

import "strings"

// testFolderNames are directory names that always mark test content.
var testFolderNames = map[string]bool{
	"__tests__":    true,
	"__fixtures__": true,
	"test":         true,
	"tests":        true,
	".test":        true,
}

// IsInTestFolder reports whether path lives under a test or fixture
// directory. Only directory segments are inspected, and names that merely
// contain "test" (attestation, latest, contest-winner) do not count.
func IsInTestFolder(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return false
	}
	for _, segment := range segments[:len(segments)-1] {
		name := strings.ToLower(segment)
		if testFolderNames[name] {
			return true
		}
		if strings.HasPrefix(name, "test-") || strings.HasSuffix(name, "-test") {
			return true
		}
	}
	return false
}

// IsActionFileName reports whether name is an action definition file.
func IsActionFileName(name string) bool {
	return name == "action.yml" || name == "action.yaml"
}

// IsDockerfileName reports whether name is a Dockerfile.
func IsDockerfileName(name string) bool {
	return name == "Dockerfile" || name == "dockerfile"
}
