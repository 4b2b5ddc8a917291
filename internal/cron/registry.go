package cron

import "context"

// Job is a scheduled task. Spec is its cron expression; Run returns a
// short human-readable result for the scheduler log.
type Job interface {
	Name() string
	Spec() string
	Run(ctx context.Context) (string, error)
}

// Registry tracks registered jobs by name.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register adds a job to the registry.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// Get returns the job with the given name, or nil.
func (r *Registry) Get(name string) Job {
	for _, job := range r.jobs {
		if job.Name() == name {
			return job
		}
	}
	return nil
}
