// Package catalog models the DataHub metadata that City Scout publishes:
// entity URNs, the aspects attached to datasets and the change proposals
// that carry them to the catalog service.
package catalog

import (
	"fmt"
	"strings"
)

// Default fabric for every dataset URN we build.
const EnvProd = "PROD"

// PlatformURN returns the URN of a data platform (e.g. "firestore").
func PlatformURN(platform string) string {
	return "urn:li:dataPlatform:" + platform
}

// DatasetURN builds a dataset URN of the form
// urn:li:dataset:(urn:li:dataPlatform:<platform>,<name>,<env>).
func DatasetURN(platform, name, env string) string {
	if env == "" {
		env = EnvProd
	}
	return fmt.Sprintf("urn:li:dataset:(%s,%s,%s)", PlatformURN(platform), name, env)
}

// TagURN returns the URN for a tag name. Names that are already URNs are returned as is.
func TagURN(name string) string {
	if strings.HasPrefix(name, "urn:li:tag:") {
		return name
	}
	return "urn:li:tag:" + name
}
