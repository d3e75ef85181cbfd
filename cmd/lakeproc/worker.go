package main

const (
	docWorker = `Run a job worker`
)

type optsWorker struct {
	optsService
}

func (c *optsWorker) Execute(args []string) error {
	// The worker pulls queued jobs and runs them: export inputs, run the
	// tool's pure function, ingest or sign the output. It holds the one
	// read-write lake attachment in the deployment, so run exactly one
	// (scale via --concurrency, not more workers, unless you move the
	// read-write role elsewhere).
	svc, _, qu, err := buildService(&c.optsService, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err = svc.RegisterWorkers(); err != nil {
		return err
	}
	return qu.Run()
}
