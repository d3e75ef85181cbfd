package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

const (
	tableJobs     = "jobs"
	tableDatasets = "datasets"
)

// Postgres is the durable store implementation backed by postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	opts.URL = strings.Replace(opts.URL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	opts.URL = strings.Replace(opts.URL, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)
	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertJob writes a terminal job row. The insert is idempotent: a
// conflicting id leaves the existing row untouched (terminal rows are
// immutable) and returns false.
func (p *Postgres) InsertJob(ctx context.Context, j *structs.Job) (bool, error) {
	if !structs.IsFinalStatus(j.Status) {
		return false, fmt.Errorf("%w only terminal jobs are durable, got %s", errors.ErrInvalidState, j.Status)
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	payload, err := json.Marshal(j.Payload)
	if err != nil {
		return false, err
	}

	qstr := fmt.Sprintf(`INSERT INTO %s (id, owner_id, tool, status, payload, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING;`, tableJobs)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, j.ID, j.OwnerID, j.Tool, j.Status, payload, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return false, err
	}
	return info.RowsAffected() == 1, nil
}

// Job returns a single job row by id.
func (p *Postgres) Job(ctx context.Context, id uuid.UUID) (*structs.Job, error) {
	qstr := fmt.Sprintf(`SELECT id, owner_id, tool, status, payload, created_at, updated_at FROM %s WHERE id=$1;`, tableJobs)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, id))
	if err == pgx.ErrNoRows {
		return nil, errors.ErrNoSuchJob
	}
	return j, err
}

// Jobs returns job rows matching the given query.
func (p *Postgres) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	where, args := toSqlQuery(map[string][]string{
		"id":       q.JobIDs,
		"owner_id": q.OwnerIDs,
		"tool":     q.Tools,
		"status":   statusToStrings(q.Statuses),
	})
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT id, owner_id, tool, status, payload, created_at, updated_at FROM %s %s
	ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, tableJobs, where, len(args)-1, len(args))

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*structs.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// InsertDataset writes a dataset metadata record.
func (p *Postgres) InsertDataset(ctx context.Context, d *structs.Dataset) error {
	if d.CreatedAt == 0 {
		d.CreatedAt = timeNow()
		d.UpdatedAt = d.CreatedAt
	}
	columns, err := json.Marshal(d.Columns)
	if err != nil {
		return err
	}
	style, err := json.Marshal(d.Style)
	if err != nil {
		return err
	}
	extent, err := json.Marshal(d.Extent)
	if err != nil {
		return err
	}

	qstr := fmt.Sprintf(`INSERT INTO %s
	(id, owner_id, folder_id, name, kind, geometry_kind, columns, style, extent, row_count, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`, tableDatasets)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr,
		d.ID, d.OwnerID, d.FolderID, d.Name, d.Kind, d.GeometryKind,
		columns, style, extent, d.RowCount, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// Dataset returns a dataset metadata record scoped to the given owner.
func (p *Postgres) Dataset(ctx context.Context, owner, id uuid.UUID) (*structs.Dataset, error) {
	qstr := fmt.Sprintf(`SELECT id, owner_id, folder_id, name, kind, geometry_kind, columns, style, extent, row_count, created_at, updated_at
	FROM %s WHERE id=$1 AND owner_id=$2;`, tableDatasets)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	d := structs.Dataset{}
	var columns, style, extent []byte
	err = conn.QueryRow(ctx, qstr, id, owner).Scan(
		&d.ID, &d.OwnerID, &d.FolderID, &d.Name, &d.Kind, &d.GeometryKind,
		&columns, &style, &extent, &d.RowCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.ErrDatasetNotFound
	}
	if err != nil {
		return nil, err
	}
	if err = unmarshalInto(columns, &d.Columns); err != nil {
		return nil, err
	}
	if err = unmarshalInto(style, &d.Style); err != nil {
		return nil, err
	}
	if err = unmarshalInto(extent, &d.Extent); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDataset removes a dataset metadata record.
func (p *Postgres) DeleteDataset(ctx context.Context, owner, id uuid.UUID) error {
	qstr := fmt.Sprintf(`DELETE FROM %s WHERE id=$1 AND owner_id=$2;`, tableDatasets)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, id, owner)
	return err
}

// OwnsDataset reports whether the owner owns the dataset. This is the
// ownership predicate the runner trusts; folder / project authorization
// happens upstream of this service.
func (p *Postgres) OwnsDataset(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	qstr := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id=$1 AND owner_id=$2;`, tableDatasets)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	var n int64
	err = conn.QueryRow(ctx, qstr, id, owner).Scan(&n)
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*structs.Job, error) {
	j := structs.Job{}
	var payload []byte
	err := row.Scan(&j.ID, &j.OwnerID, &j.Tool, &j.Status, &payload, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err = unmarshalInto(payload, &j.Payload); err != nil {
		return nil, err
	}
	return &j, nil
}

func unmarshalInto(raw []byte, out interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// toSqlQuery converts query data into a SQL WHERE string & args
func toSqlQuery(in map[string][]string) (string, []interface{}) {
	and := []string{}
	args := []interface{}{}
	for _, k := range []string{"id", "owner_id", "tool", "status"} {
		v := in[k]
		if len(v) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, k, v)
		and = append(and, s)
		args = append(args, a...)
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(offset int, field string, args []string) (string, []interface{}) {
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// statusToStrings converts a list of statuses into a list of strings
func statusToStrings(in []structs.Status) []string {
	if len(in) == 0 {
		return nil
	}
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// timeNow returns the current time in unix seconds
func timeNow() int64 {
	return time.Now().Unix()
}
