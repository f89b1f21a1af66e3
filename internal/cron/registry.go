package cron

import (
	"context"
	"fmt"
)

// Job is one unit of scheduled maintenance.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in registration order, keyed by unique name.
type Registry struct {
	jobs   []Job
	byName map[string]Job
}

// NewRegistry builds a registry from jobs, skipping nils. It fails on
// duplicate names.
func NewRegistry(jobs ...Job) (*Registry, error) {
	registry := &Registry{byName: map[string]Job{}}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register appends job.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	name := job.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("cron job %q registered twice", name)
	}
	r.byName[name] = job
	r.jobs = append(r.jobs, job)
	return nil
}

// Lookup returns the job registered under name.
func (r *Registry) Lookup(name string) (Job, bool) {
	job, ok := r.byName[name]
	return job, ok
}

// Jobs returns a copy of the registered jobs in order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
