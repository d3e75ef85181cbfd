package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

const (
	asyncWorkQueue = "lakeproc:jobs"
)

type Asynq struct {
	opts *Options

	// the asynq client & inspector
	ins *asynq.Inspector
	cli *asynq.Client

	// if register is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server
}

func NewAsynqQueue(opts *Options) (*Asynq, error) {
	opts.SetDefaults()
	ins := asynq.NewInspector(redisOpt(opts))
	cli := asynq.NewClient(redisOpt(opts))
	return &Asynq{
		opts: opts,
		ins:  ins,
		cli:  cli,
	}, nil
}

func (a *Asynq) Close() error {
	if a.srv == nil {
		return nil
	}
	a.srv.Stop()
	a.srv.Shutdown()
	return nil
}

func (a *Asynq) Register(tool string, handler func(ctx context.Context, t *Task) error) error {
	if a.mux == nil {
		a.buildServer()
	}
	a.mux.HandleFunc(tool, func(ctx context.Context, qt *asynq.Task) error {
		t := &Task{}
		err := json.Unmarshal(qt.Payload(), t)
		if err != nil {
			return err
		}
		return handler(ctx, t)
	})
	return nil
}

func (a *Asynq) Run() error {
	if a.srv == nil {
		a.buildServer()
	}
	return a.srv.Run(a.mux)
}

func (a *Asynq) Enqueue(t *Task, timeout time.Duration) (string, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	info, err := a.cli.Enqueue(
		asynq.NewTask(t.Tool, payload),
		asynq.Queue(asyncWorkQueue),
		asynq.Timeout(timeout),
		// the handler reports its own outcome; a rerun would redo the
		// whole analysis for nothing
		asynq.MaxRetry(0),
	)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *Asynq) Kill(queuedTaskID string) error {
	// Best effort cancel; asynq can't guarantee this will kill it
	return a.ins.CancelProcessing(queuedTaskID)
}

func (a *Asynq) buildServer() {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return
	}
	srv := asynq.NewServer(
		redisOpt(a.opts),
		asynq.Config{
			Queues:      map[string]int{asyncWorkQueue: 1},
			Concurrency: a.opts.Concurrency,
		},
	)
	mux := asynq.NewServeMux()
	a.srv = srv
	a.mux = mux
}

func redisOpt(opts *Options) asynq.RedisClientOpt {
	conn := asynq.RedisClientOpt{Addr: opts.URL}
	if parsed, err := asynq.ParseRedisURI(opts.URL); err == nil {
		if c, ok := parsed.(asynq.RedisClientOpt); ok {
			conn = c
		}
	}
	conn.TLSConfig = opts.TLSConfig
	return conn
}
