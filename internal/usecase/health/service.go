package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a non-critical component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates a critical component is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultProbeTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type probe struct {
	name     string
	critical bool
	fn       ProbeFunc
}

// Service runs component probes.
type Service struct {
	probes  []probe
	timeout time.Duration
}

// New registers the database as critical and the job transport, when present,
// as non-critical: swipes queue up but reads keep working without it.
func New(db DBPinger, queue QueueChecker) *Service {
	s := &Service{timeout: defaultProbeTimeout}
	s.Register("database", true, db.Ping)
	if queue != nil {
		s.Register("queue", false, queue.HealthCheck)
	}
	return s
}

// Register adds a named probe. Names must be unique.
func (s *Service) Register(name string, critical bool, fn ProbeFunc) {
	s.probes = append(s.probes, probe{name: name, critical: critical, fn: fn})
}

// WithTimeout bounds every probe.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Names lists registered probes in sorted order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.probes))
	for _, p := range s.probes {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

// Check runs all probes concurrently.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]CheckResult, len(s.probes))
	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = CheckOK
			if err := p.fn(ctx); err != nil {
				results[i] = CheckError
			}
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes))}
	for i, p := range s.probes {
		report.Checks[p.name] = results[i]
		if results[i] == CheckOK {
			continue
		}
		if p.critical {
			report.Status = Unhealthy
		} else if report.Status == Healthy {
			report.Status = Degraded
		}
	}
	return report
}
