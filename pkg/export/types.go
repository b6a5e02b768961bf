package export

import (
	"zabbup-hq/zabbup/pkg/zabbix"
)

// Object is one exported Zabbix configuration object.
type Object struct {
	Type zabbix.ObjectType

	// ID is the Zabbix identity of the object. Always positive.
	ID int64

	Name string

	// NameSanitized is Name reduced to [A-Za-z0-9_.-]. It may be empty.
	NameSanitized string

	// Data is the serialized export payload in the batch format.
	Data string
}

// Batch is the complete result of one export run. Sinks only read it.
type Batch struct {
	// Format is the effective export format of every object in the batch.
	Format zabbix.ExportFormat

	Objects []Object
}

// Len returns the number of objects in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Objects)
}

// CountByType returns the number of objects per object type.
func (b *Batch) CountByType() map[zabbix.ObjectType]int {
	counts := make(map[zabbix.ObjectType]int)
	if b == nil {
		return counts
	}
	for _, o := range b.Objects {
		counts[o.Type]++
	}
	return counts
}
