// Package geo holds the reference analysis tools. Each one is a pure
// function over local parquet files, computed by an in-process duckdb
// with the spatial extension; nothing here touches the lake or network.
package geo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/tools"
)

var (
	clipSchema = tools.PureSchema{
		{Name: "input_path", Role: tools.RoleInput, Required: true},
		{Name: "overlay_path", Role: tools.RoleOverlay, Required: true},
		{Name: "output_path", Role: tools.RoleOutput},
	}

	bufferSchema = tools.PureSchema{
		{Name: "distance", Role: tools.RoleValue, Required: true},
		{Name: "input_path", Role: tools.RoleInput, Required: true},
		{Name: "output_path", Role: tools.RoleOutput},
	}
)

// Register adds the reference tools to the given registry.
func Register(reg *tools.Registry) error {
	if err := reg.Register("clip", tools.CategoryShort, clipSchema, runClip); err != nil {
		return err
	}
	return reg.Register("buffer", tools.CategoryShort, bufferSchema, runBuffer)
}

// runClip keeps the parts of input features that intersect the overlay,
// cut down to the intersection geometry.
func runClip(ctx context.Context, args *tools.PureArgs) (*tools.PureResult, error) {
	query := clipQuery(args.InputPaths["input_path"], args.InputPaths["overlay_path"], args.OutputPath)
	if err := execLocal(ctx, query); err != nil {
		return nil, err
	}
	return &tools.PureResult{OutputPath: args.OutputPath}, nil
}

// runBuffer widens every input geometry by the given distance.
func runBuffer(ctx context.Context, args *tools.PureArgs) (*tools.PureResult, error) {
	distance, err := toFloat(args.Values["distance"])
	if err != nil {
		return nil, fmt.Errorf("%w: distance: %v", errors.ErrValidation, err)
	}
	query := bufferQuery(args.InputPaths["input_path"], distance, args.OutputPath)
	if err := execLocal(ctx, query); err != nil {
		return nil, err
	}
	return &tools.PureResult{OutputPath: args.OutputPath}, nil
}

func clipQuery(input, overlay, output string) string {
	return fmt.Sprintf(
		`COPY (SELECT a.* EXCLUDE ("geom"), ST_Intersection(a."geom", b."geom") AS "geom" `+
			`FROM read_parquet('%s') a JOIN read_parquet('%s') b ON ST_Intersects(a."geom", b."geom")) `+
			`TO '%s' (FORMAT PARQUET)`,
		quote(input), quote(overlay), quote(output),
	)
}

func bufferQuery(input string, distance float64, output string) string {
	return fmt.Sprintf(
		`COPY (SELECT * REPLACE (ST_Buffer("geom", %g) AS "geom") FROM read_parquet('%s')) `+
			`TO '%s' (FORMAT PARQUET)`,
		distance, quote(input), quote(output),
	)
}

// execLocal runs one statement on a throwaway in-memory duckdb.
func execLocal(ctx context.Context, query string) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, "INSTALL spatial; LOAD spatial;"); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query)
	return err
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
