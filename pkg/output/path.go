package output

import (
	"fmt"
	"path"
	"strings"

	"zabbup-hq/zabbup/pkg/export"
	"zabbup-hq/zabbup/pkg/zabbix"
)

// ArtifactPath returns the slash separated path of the artifact of o.
// An empty sanitized name yields "{type}/_{id}.{format}".
func ArtifactPath(o export.Object, format zabbix.ExportFormat) string {
	return fmt.Sprintf("%s/%s_%d.%s", o.Type, o.NameSanitized, o.ID, format)
}

// ObjectKey prefixes the artifact path of o with prefix, if any. Keys never
// start with a slash.
func ObjectKey(prefix string, o export.Object, format zabbix.ExportFormat) string {
	if prefix == "" {
		return ArtifactPath(o, format)
	}
	return strings.TrimPrefix(path.Join(prefix, ArtifactPath(o, format)), "/")
}
