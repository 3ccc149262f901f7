package casework

import (
	"fmt"
	"strings"
)

// Pure helpers deriving blob-storage keys and public URIs. Used both when
// constructing new upload targets and when re-deriving the URI of a
// previously stored version.

// SanitizeCaseReference makes a case reference safe for use as a URL path
// segment. References like "APP/Q9999/D/21/123" carry slashes.
func SanitizeCaseReference(reference string) string {
	return strings.ReplaceAll(reference, "/", "-")
}

// BuildBlobPath derives the container-relative key for a version's bytes:
// "appeal/<sanitizedRef>/<guid>/v<version>/<fileName>".
func BuildBlobPath(guid, caseReference, fileName string, version int) string {
	if version < 1 {
		version = 1
	}
	return fmt.Sprintf("appeal/%s/%s/v%d/%s",
		SanitizeCaseReference(caseReference), guid, version, fileName)
}

// BuildDocumentURI concatenates the public storage host, container and
// blob path. The host is normalized first: any query-string suffix is cut
// and a trailing slash trimmed.
func BuildDocumentURI(storageHost, container, blobPath string) string {
	host := storageHost
	if i := strings.Index(host, "?"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("%s/%s/%s", host, container, blobPath)
}
