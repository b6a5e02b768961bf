package zabbix

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectType is one category of exportable Zabbix configuration object.
type ObjectType string

// Supported object types, in the order the configuration file documents them.
const (
	Templates      ObjectType = "templates"
	TemplateGroups ObjectType = "templategroups"
	Hosts          ObjectType = "hosts"
	HostGroups     ObjectType = "hostgroups"
	Maps           ObjectType = "maps"
	Images         ObjectType = "images"
	MediaTypes     ObjectType = "mediatypes"
)

// ObjectSpec maps an object type to the Zabbix API names used to list and
// export it.
type ObjectSpec struct {
	// Method is the API object whose ".get" method lists objects of this type.
	Method string

	// IDField is the identity field returned by the listing call.
	IDField string

	// ExportField is the configuration.export option key for this type.
	ExportField string
}

// AllObjectTypes returns every supported object type.
func AllObjectTypes() []ObjectType {
	return []ObjectType{
		Templates,
		TemplateGroups,
		Hosts,
		HostGroups,
		Maps,
		Images,
		MediaTypes,
	}
}

// Spec returns the API mapping for the object type.
func (t ObjectType) Spec() (ObjectSpec, bool) {
	switch t {
	case Templates:
		return ObjectSpec{Method: "template", IDField: "templateid", ExportField: "templates"}, true
	case TemplateGroups:
		return ObjectSpec{Method: "templategroup", IDField: "groupid", ExportField: "template_groups"}, true
	case Hosts:
		return ObjectSpec{Method: "host", IDField: "hostid", ExportField: "hosts"}, true
	case HostGroups:
		return ObjectSpec{Method: "hostgroup", IDField: "groupid", ExportField: "host_groups"}, true
	case Maps:
		return ObjectSpec{Method: "map", IDField: "sysmapid", ExportField: "maps"}, true
	case Images:
		return ObjectSpec{Method: "image", IDField: "imageid", ExportField: "images"}, true
	case MediaTypes:
		return ObjectSpec{Method: "mediatype", IDField: "mediatypeid", ExportField: "mediaTypes"}, true
	default:
		return ObjectSpec{}, false
	}
}

// Valid reports whether t is a supported object type.
func (t ObjectType) Valid() bool {
	_, ok := t.Spec()
	return ok
}

// String returns the object type name.
func (t ObjectType) String() string {
	return string(t)
}

// ExportFormat is the serialization format requested from configuration.export.
type ExportFormat string

// Export formats accepted by configuration.export.
const (
	FormatYAML ExportFormat = "yaml"
	FormatJSON ExportFormat = "json"
	FormatXML  ExportFormat = "xml"
)

// Valid reports whether f is a supported export format.
func (f ExportFormat) Valid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatXML:
		return true
	}
	return false
}

// ObjectRef is the identity of a listed object.
type ObjectRef struct {
	ID   string
	Name string
}

// Version is a parsed Zabbix server API version.
type Version struct {
	Major int
	Minor int
	Patch int
	Raw   string
}

// ParseVersion parses a version string such as "6.0.25".
func ParseVersion(s string) (Version, error) {
	v := Version{Raw: s}
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return v, fmt.Errorf("invalid version %q", s)
	}

	nums := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		// Pre-release suffixes such as "7.0.0rc1" keep their numeric prefix.
		digits := parts[i]
		if end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); end >= 0 {
			digits = digits[:end]
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return v, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}

	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

// Before reports whether v is older than major.minor.
func (v Version) Before(major, minor int) bool {
	if v.Major != major {
		return v.Major < major
	}
	return v.Minor < minor
}

func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
