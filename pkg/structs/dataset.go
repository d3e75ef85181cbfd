package structs

import (
	"github.com/google/uuid"
)

// DatasetKind distinguishes geometric from plain tabular datasets.
type DatasetKind string

const (
	KindFeature DatasetKind = "feature"
	KindTable   DatasetKind = "table"
)

// GeometryKind is the simplified geometry class of a feature dataset.
type GeometryKind string

const (
	GeomPoint   GeometryKind = "point"
	GeomLine    GeometryKind = "line"
	GeomPolygon GeometryKind = "polygon"
)

// Extent is a lon/lat bounding box.
type Extent struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Column describes one attribute column of a dataset table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Dataset is the metadata record of one dataset (layer). The row data
// itself lives in the lake under a tenant schema / dataset table named
// deterministically from (owner id, dataset id).
type Dataset struct {
	ID       uuid.UUID `json:"id"`
	OwnerID  uuid.UUID `json:"owner_id"`
	FolderID uuid.UUID `json:"folder_id,omitempty"`

	Name string      `json:"name"`
	Kind DatasetKind `json:"kind"`

	GeometryKind GeometryKind           `json:"geometry_kind,omitempty"`
	Columns      []Column               `json:"columns,omitempty"`
	Style        map[string]interface{} `json:"style,omitempty"`
	Extent       *Extent                `json:"extent,omitempty"`
	RowCount     int64                  `json:"row_count"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}
