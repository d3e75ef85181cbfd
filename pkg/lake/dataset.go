package lake

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

// TableInfo is the metadata inferred from a freshly written table.
type TableInfo struct {
	Columns        []structs.Column
	RowCount       int64
	GeometryColumn string
	GeometryKind   structs.GeometryKind
	Extent         *structs.Extent
}

// Service materializes datasets out of the lake as parquet files and
// ingests parquet files back in as new dataset tables.
type Service struct {
	co *Coordinator
}

// NewService returns a dataset export/ingest service over the given
// coordinator.
func NewService(co *Coordinator) *Service {
	return &Service{co: co}
}

// Export writes a dataset to a parquet file at outPath.
//
// The filter, if set, is pushed down into the export query so only
// matching rows are materialized. If a scenario is given and an edits
// table exists for (dataset, scenario), the edits are applied first:
// rows the scenario modified or deleted are dropped from the base and
// the scenario's new / modified rows are appended. Geometric datasets
// are written in hilbert order so downstream readers get spatial
// locality for free.
func (s *Service) Export(ctx context.Context, owner, dataset uuid.UUID, filter string, scenario *uuid.UUID, outPath string) error {
	table := Qualified(owner, dataset)

	return s.co.With(ctx, ReadOnly, func(h *Handle) error {
		cols, err := describe(ctx, h, table)
		if err != nil {
			return err
		}

		names := columnNames(cols)
		where := ""
		if filter != "" {
			where = " WHERE " + filter
		}
		query := fmt.Sprintf("SELECT %s FROM %s%s", names, table, where)

		if scenario != nil {
			edits := QualifiedEdits(owner, dataset, *scenario)
			ok, err := tableExists(ctx, h, SchemaName(owner), EditsTableName(dataset, *scenario))
			if err != nil {
				return err
			}
			if ok {
				query = overlayQuery(table, edits, names, filter)
			}
		}

		if gc := geometryColumn(cols); gc != "" {
			query = fmt.Sprintf(`SELECT * FROM (%s) ORDER BY ST_Hilbert("%s")`, query, gc)
		}

		_, err = h.DB().ExecContext(ctx, fmt.Sprintf("COPY (%s) TO '%s' (FORMAT PARQUET)", query, outPath))
		if err != nil {
			return err
		}
		log.Printf("lake: exported %s to %s", table, outPath)
		return nil
	})
}

// Ingest creates the dataset table from a parquet file and returns the
// inferred metadata. The tenant schema is created if absent; re-running
// an ingest replaces the table rather than failing.
func (s *Service) Ingest(ctx context.Context, owner, dataset uuid.UUID, parquetPath string) (*TableInfo, error) {
	table := Qualified(owner, dataset)
	info := &TableInfo{}

	err := s.co.With(ctx, ReadWrite, func(h *Handle) error {
		_, err := h.DB().ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s.%s", catalogAlias, SchemaName(owner)))
		if err != nil {
			return err
		}
		_, err = h.DB().ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_parquet('%s')", table, parquetPath))
		if err != nil {
			return err
		}

		fresh, err := inspect(ctx, h, table)
		if err != nil {
			return err
		}
		*info = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("lake: ingested %s (%d rows)", table, info.RowCount)
	return info, nil
}

// DropTable removes a dataset's table. Dropping a table that does not
// exist is not an error; deletes must be safe to re-run.
func (s *Service) DropTable(ctx context.Context, owner, dataset uuid.UUID) error {
	return s.co.With(ctx, ReadWrite, func(h *Handle) error {
		_, err := h.DB().ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", Qualified(owner, dataset)))
		return err
	})
}

// ClassBreaks computes the interior quantile breaks that split a
// numeric column into the given number of classes. Used to build
// graduated default styles.
func (s *Service) ClassBreaks(ctx context.Context, owner, dataset uuid.UUID, column string, classes int) ([]float64, error) {
	if classes < 2 {
		return nil, fmt.Errorf("%w: need at least 2 classes, got %d", errors.ErrInvalidArg, classes)
	}

	selects := []string{}
	for i := 1; i < classes; i++ {
		selects = append(selects, fmt.Sprintf(`quantile_cont("%s", %f)`, column, float64(i)/float64(classes)))
	}
	qstr := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), Qualified(owner, dataset))

	breaks := make([]float64, classes-1)
	err := s.co.With(ctx, ReadOnly, func(h *Handle) error {
		dest := make([]interface{}, len(breaks))
		for i := range breaks {
			dest[i] = &breaks[i]
		}
		return h.DB().QueryRowContext(ctx, qstr).Scan(dest...)
	})
	if err != nil {
		return nil, err
	}
	return breaks, nil
}

// overlayQuery applies a scenario's edits on top of the base table:
// base rows the scenario modified ('m') or deleted ('d') are excluded,
// then the scenario's new and modified rows are appended. The filter
// only constrains the base; edits always win.
func overlayQuery(table, edits, names, filter string) string {
	where := fmt.Sprintf(`id NOT IN (SELECT feature_id FROM %s WHERE edit_type IN ('m', 'd'))`, edits)
	if filter != "" {
		where = fmt.Sprintf("(%s) AND %s", filter, where)
	}
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s UNION ALL SELECT %s FROM %s WHERE edit_type IN ('n', 'm')`,
		names, table, where, names, edits)
}

// inspect reads back a table's columns, row count, geometry kind and
// extent.
func inspect(ctx context.Context, h *Handle, table string) (*TableInfo, error) {
	cols, err := describe(ctx, h, table)
	if err != nil {
		return nil, err
	}
	info := &TableInfo{Columns: cols, GeometryColumn: geometryColumn(cols)}

	err = h.DB().QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&info.RowCount)
	if err != nil {
		return nil, err
	}
	if info.GeometryColumn == "" {
		return info, nil
	}

	var geomType sql.NullString
	err = h.DB().QueryRowContext(ctx, fmt.Sprintf(
		`SELECT DISTINCT ST_GeometryType("%s") FROM %s WHERE "%s" IS NOT NULL LIMIT 1`,
		info.GeometryColumn, table, info.GeometryColumn,
	)).Scan(&geomType)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	info.GeometryKind = geometryKind(geomType.String)

	var xmin, ymin, xmax, ymax sql.NullFloat64
	err = h.DB().QueryRowContext(ctx, fmt.Sprintf(
		`SELECT ST_XMin(ST_Extent("%s")), ST_YMin(ST_Extent("%s")), ST_XMax(ST_Extent("%s")), ST_YMax(ST_Extent("%s"))
		FROM %s WHERE "%s" IS NOT NULL`,
		info.GeometryColumn, info.GeometryColumn, info.GeometryColumn, info.GeometryColumn, table, info.GeometryColumn,
	)).Scan(&xmin, &ymin, &xmax, &ymax)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if xmin.Valid && ymin.Valid && xmax.Valid && ymax.Valid {
		info.Extent = &structs.Extent{XMin: xmin.Float64, YMin: ymin.Float64, XMax: xmax.Float64, YMax: ymax.Float64}
	}
	return info, nil
}

// describe returns a table's columns in order.
func describe(ctx context.Context, h *Handle, table string) ([]structs.Column, error) {
	rows, err := h.DB().QueryContext(ctx, "DESCRIBE "+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []structs.Column{}
	for rows.Next() {
		var name, ctype string
		var null, key, dflt, extra sql.NullString
		if err := rows.Scan(&name, &ctype, &null, &key, &dflt, &extra); err != nil {
			return nil, err
		}
		cols = append(cols, structs.Column{Name: name, Type: ctype})
	}
	return cols, rows.Err()
}

// tableExists checks the attached catalog for a table.
func tableExists(ctx context.Context, h *Handle, schema, table string) (bool, error) {
	var n int64
	err := h.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_catalog = ? AND table_schema = ? AND table_name = ?`,
		catalogAlias, schema, table,
	).Scan(&n)
	return n > 0, err
}

// columnNames renders a quoted, comma separated column list.
func columnNames(cols []structs.Column) string {
	names := []string{}
	for _, c := range cols {
		names = append(names, fmt.Sprintf(`"%s"`, c.Name))
	}
	return strings.Join(names, ", ")
}

// geometryColumn returns the first GEOMETRY typed column, or "".
func geometryColumn(cols []structs.Column) string {
	for _, c := range cols {
		if strings.Contains(strings.ToUpper(c.Type), "GEOMETRY") {
			return c.Name
		}
	}
	return ""
}

// geometryKind maps a storage geometry type to its simplified class.
// Multi variants collapse onto their base kind; unknown non-empty types
// fall back to polygon.
func geometryKind(geomType string) structs.GeometryKind {
	switch strings.ToUpper(geomType) {
	case "":
		return ""
	case "POINT", "MULTIPOINT":
		return structs.GeomPoint
	case "LINESTRING", "MULTILINESTRING":
		return structs.GeomLine
	default:
		return structs.GeomPolygon
	}
}
