package lake

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// catalogAlias is the name the lake catalog is attached under; every
// qualified table name starts with it.
const catalogAlias = "lake"

// SchemaName returns the tenant schema for an owner.
func SchemaName(owner uuid.UUID) string {
	return "user_" + hex32(owner)
}

// TableName returns the bare table name for a dataset.
func TableName(dataset uuid.UUID) string {
	return "t_" + hex32(dataset)
}

// Qualified returns the fully qualified table name for a dataset,
// ie. lake.user_<owner>.t_<dataset>.
func Qualified(owner, dataset uuid.UUID) string {
	return fmt.Sprintf("%s.%s.%s", catalogAlias, SchemaName(owner), TableName(dataset))
}

// EditsTableName returns the bare table name holding a scenario's edits
// to a dataset.
func EditsTableName(dataset, scenario uuid.UUID) string {
	return fmt.Sprintf("t_%s_s_%s", hex32(dataset), hex32(scenario))
}

// QualifiedEdits returns the fully qualified scenario edits table name.
func QualifiedEdits(owner, dataset, scenario uuid.UUID) string {
	return fmt.Sprintf("%s.%s.%s", catalogAlias, SchemaName(owner), EditsTableName(dataset, scenario))
}

func hex32(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
