// Package module provides the ranker module implementation
package module

import (
	"rankbot/internal/modkit"

	"rankbot/internal/adapters/groups"
	"rankbot/internal/core/policyfile"
	"rankbot/internal/services/ranker/domain"
	"rankbot/internal/services/ranker/service"
)

// Ports defines the ranker module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ranker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ranker module.
// It loads the policy file, builds the group API client, and wires the
// service using config from deps.Cfg. Bad configuration panics here,
// before any network traffic
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	tr := TransportFromConfig(deps.Cfg)

	file, err := policyfile.Load(opts.PolicyPath)
	if err != nil {
		panic(err)
	}
	pol, err := file.Policy()
	if err != nil {
		panic(err)
	}

	client := groups.NewClient(groups.Options{
		BaseURL:   tr.BaseURL,
		UsersURL:  tr.UsersURL,
		UserAgent: tr.UserAgent,
		Timeout:   tr.Timeout,
		Cookie:    tr.Cookie,
		RPS:       tr.RPS,
		Burst:     tr.Burst,
	})

	svc := service.New(client, service.Config{
		GroupID:           file.GroupID,
		ScannedRoles:      file.ScannedRoles,
		Policy:            pol,
		DryRun:            opts.DryRun,
		Workers:           opts.Workers,
		MaxRetries:        opts.MaxRetries,
		RetryBase:         opts.RetryBase,
		RateLimitCooldown: opts.RateLimitCooldown,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "ranker" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
