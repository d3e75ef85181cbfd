package jobstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mapgrid/lakeproc/pkg/errors"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

const (
	// keyPrefix namespaces job entries in the store.
	keyPrefix = "ogc:job:"

	// indexKey is the set of ids with (possibly expired) entries.
	indexKey = "ogc:jobs"
)

// Redis is an ephemeral job store backed by redis.
type Redis struct {
	opts *Options
	conn *redis.Client
}

// NewRedis connects to redis and returns a Store backed by it.
func NewRedis(opts *Options) (*Redis, error) {
	opts.SetDefaults()

	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.TLSConfig != nil {
		ropts.TLSConfig = opts.TLSConfig
	}

	conn := redis.NewClient(ropts)
	err = conn.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return &Redis{opts: opts, conn: conn}, nil
}

// Create writes a new entry, failing if the id is already in use.
func (r *Redis) Create(ctx context.Context, e *structs.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	set, err := r.conn.SetNX(ctx, jobKey(e.JobID), data, r.opts.TTL).Result()
	if err != nil {
		return err
	}
	if !set {
		return fmt.Errorf("%w: %s", errors.ErrJobExists, e.JobID)
	}

	return r.conn.SAdd(ctx, indexKey, e.JobID).Err()
}

// Update reads the entry, applies fn and writes it back, preserving the
// remaining TTL. The write is last-writer-wins; callers are the only
// writer for their job so this is fine.
func (r *Redis) Update(ctx context.Context, jobID string, fn func(*structs.Entry)) (*structs.Entry, error) {
	e, err := r.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	fn(e)
	e.Updated = time.Now().UTC()

	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	err = r.conn.Set(ctx, jobKey(jobID), data, redis.KeepTTL).Err()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the entry for the given job id.
func (r *Redis) Get(ctx context.Context, jobID string) (*structs.Entry, error) {
	data, err := r.conn.Get(ctx, jobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoSuchJob, jobID)
	}
	if err != nil {
		return nil, err
	}

	e := &structs.Entry{}
	err = json.Unmarshal(data, e)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the entry and its index membership.
func (r *Redis) Delete(ctx context.Context, jobID string) (bool, error) {
	deleted, err := r.conn.Del(ctx, jobKey(jobID)).Result()
	if err != nil {
		return false, err
	}
	err = r.conn.SRem(ctx, indexKey, jobID).Err()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// List returns matching entries, newest first. Index members whose
// entries have expired are pruned as we go.
func (r *Redis) List(ctx context.Context, q *structs.Query) ([]*structs.Entry, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()

	ids, err := r.conn.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
	}
	values, err := r.conn.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	found := []*structs.Entry{}
	stale := []interface{}{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok { // expired since we read the index
			stale = append(stale, ids[i])
			continue
		}

		e := &structs.Entry{}
		err = json.Unmarshal([]byte(raw), e)
		if err != nil {
			return nil, err
		}
		if matches(q, e) {
			found = append(found, e)
		}
	}
	if len(stale) > 0 {
		r.conn.SRem(ctx, indexKey, stale...)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Created.After(found[j].Created)
	})
	return paginate(found, q.Offset, q.Limit), nil
}

func (r *Redis) Close() error {
	return r.conn.Close()
}

func jobKey(jobID string) string {
	return keyPrefix + jobID
}

func matches(q *structs.Query, e *structs.Entry) bool {
	if q.JobIDs != nil && !contains(q.JobIDs, e.JobID) {
		return false
	}
	if q.OwnerIDs != nil && !contains(q.OwnerIDs, e.OwnerID) {
		return false
	}
	if q.Tools != nil && !contains(q.Tools, e.ProcessID) {
		return false
	}
	if q.Statuses != nil {
		ok := false
		for _, s := range q.Statuses {
			if s == e.Status {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func contains(in []string, s string) bool {
	for _, i := range in {
		if i == s {
			return true
		}
	}
	return false
}

func paginate(in []*structs.Entry, offset, limit int) []*structs.Entry {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
