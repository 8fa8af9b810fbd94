package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
)

// SchedulerLock elects a single monitor across scaled instances. Implemented
// by the Redis TTL lock; nil disables cross-instance election.
type SchedulerLock interface {
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

// SLAMonitor is the periodic scheduling loop. Each tick walks the open
// ticket population, classifies breaches, fires due warnings and automatic
// escalations, and persists the mutated SLA state per ticket in one update.
type SLAMonitor struct {
	cfg        config.MonitorConfig
	tickets    repository.TicketRepository
	ledger     repository.SLAEventRepository
	resolver   *sla.PolicyResolver
	dispatcher events.Dispatcher
	lock       SchedulerLock
	logger     *zap.Logger
	metrics    *observability.Metrics

	cron       *cron.Cron
	running    atomic.Bool
	instanceID string
	now        func() time.Time
}

// MonitorDependencies bundles collaborators for the monitor.
type MonitorDependencies struct {
	TicketRepo repository.TicketRepository
	EventRepo  repository.SLAEventRepository
	Resolver   *sla.PolicyResolver
	Dispatcher events.Dispatcher
	Lock       SchedulerLock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewSLAMonitor constructs the monitor.
func NewSLAMonitor(cfg config.MonitorConfig, deps MonitorDependencies) *SLAMonitor {
	return &SLAMonitor{
		cfg:        cfg,
		tickets:    deps.TicketRepo,
		ledger:     deps.EventRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		lock:       deps.Lock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		instanceID: uuid.NewString(),
		now:        time.Now,
	}
}

// Start schedules the periodic tick.
func (m *SLAMonitor) Start() {
	if !m.cfg.Enabled {
		m.logger.Info("sla monitor disabled")
		return
	}
	m.cron = cron.New()
	m.cron.Schedule(cron.Every(m.cfg.Interval), cron.FuncJob(func() {
		m.RunCycle(context.Background())
	}))
	m.cron.Start()
	m.logger.Info("sla monitor started", zap.Duration("interval", m.cfg.Interval))
}

// Stop halts the schedule and waits for a running tick to finish.
func (m *SLAMonitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.logger.Info("sla monitor stopped")
}

// RunCycle performs one monitor pass. A new tick is skipped while the
// previous one still runs; overlapping ticks would double-process tickets.
func (m *SLAMonitor) RunCycle(ctx context.Context) observability.CycleStats {
	stats := observability.CycleStats{StartedAt: m.now()}

	if !m.running.CompareAndSwap(false, true) {
		m.logger.Warn("previous sla cycle still running, skipping tick")
		stats.Skipped = true
		m.metrics.RecordCycle(stats)
		return stats
	}
	defer m.running.Store(false)

	if m.cfg.UseSchedulerLock && m.lock != nil {
		acquired, err := m.lock.AcquireLock(ctx, m.cfg.LockKey, m.instanceID, m.cfg.LockTTL)
		if err != nil {
			m.logger.Warn("scheduler lock unavailable, skipping tick", zap.Error(err))
			stats.Skipped = true
			m.metrics.RecordCycle(stats)
			return stats
		}
		if !acquired {
			m.logger.Debug("another instance holds the scheduler lock")
			stats.Skipped = true
			m.metrics.RecordCycle(stats)
			return stats
		}
		defer func() {
			if err := m.lock.ReleaseLock(ctx, m.cfg.LockKey, m.instanceID); err != nil {
				m.logger.Warn("failed to release scheduler lock", zap.Error(err))
			}
		}()
	}

	tickets, err := m.tickets.ListForMonitoring(ctx, m.cfg.BatchSize)
	if err != nil {
		m.logger.Error("failed to load tickets for sla cycle", zap.Error(err))
		stats.Errors++
		stats.Duration = m.now().Sub(stats.StartedAt)
		m.metrics.RecordCycle(stats)
		return stats
	}

	now := m.now()
	for i := range tickets {
		ticket := &tickets[i]
		stats.Scanned++
		outcome, err := m.evaluateTicket(ctx, ticket, now)
		if err != nil {
			// One ticket's failure never aborts the batch; SLA state is
			// convergent, so the next tick re-evaluates it correctly.
			m.logger.Error("sla evaluation failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			stats.Errors++
			continue
		}
		if outcome.breached {
			stats.Breached++
		}
		stats.Warned += outcome.warningsFired
		if outcome.escalated {
			stats.Escalated++
		}
	}

	stats.Duration = m.now().Sub(stats.StartedAt)
	m.metrics.RecordCycle(stats)
	m.logger.Info("sla cycle complete",
		zap.Int("scanned", stats.Scanned),
		zap.Int("breached", stats.Breached),
		zap.Int("warnings", stats.Warned),
		zap.Int("escalated", stats.Escalated),
		zap.Int("errors", stats.Errors),
		zap.Duration("duration", stats.Duration))
	return stats
}

type evaluationOutcome struct {
	breached      bool
	warningsFired int
	escalated     bool
}

func (m *SLAMonitor) evaluateTicket(ctx context.Context, ticket *domain.Ticket, now time.Time) (outcome evaluationOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during evaluation: %v", r)
		}
	}()

	// The query already filters terminal tickets, but a human agent may
	// have resolved the ticket mid-cycle.
	if ticket.Status.IsTerminal() {
		return outcome, nil
	}

	policy := m.resolver.Resolve(ctx, ticket)
	result := sla.CheckBreach(ticket, now)
	mutated := false

	if result.Breached && ticket.SLABreachAt == nil {
		fired, ledgerErr := m.recordOnce(ctx, ticket.ID, domain.SLAEventKindBreach, string(result.Type))
		if ledgerErr != nil {
			return outcome, ledgerErr
		}
		breachedAt := now
		ticket.SLABreachAt = &breachedAt
		mutated = true
		outcome.breached = true
		if fired {
			m.publish(ctx, events.Event{
				Type:     events.EventSLABreach,
				TicketID: ticket.ID,
				Payload: events.SLABreachPayload{
					BreachType: string(result.Type),
					Percentage: result.Percentage,
					BreachedAt: breachedAt,
					PolicyName: policy.Name,
				},
			})
		}
	}

	for _, warning := range sla.DueWarnings(policy, ticket, result.Percentage) {
		fired, ledgerErr := m.recordOnce(ctx, ticket.ID, domain.SLAEventKindWarning, strconv.Itoa(warning.Percentage))
		if ledgerErr != nil {
			return outcome, ledgerErr
		}
		ticket.SLAWarningsSent = append(ticket.SLAWarningsSent, warning.Percentage)
		mutated = true
		if fired {
			outcome.warningsFired++
			m.publish(ctx, events.Event{
				Type:     events.EventSLAWarning,
				TicketID: ticket.ID,
				Payload: events.SLAWarningPayload{
					Percentage:     warning.Percentage,
					NotifyUsers:    warning.NotifyUsers,
					NotifyChannels: warning.NotifyChannels,
					PolicyName:     policy.Name,
				},
			})
		}
	}

	if escalated, escErr := m.autoEscalate(ctx, ticket, policy, result, now); escErr != nil {
		return outcome, escErr
	} else if escalated {
		outcome.escalated = true
		mutated = true
	}

	if mutated {
		if err := m.tickets.UpdateSLAState(ctx, ticket); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

func (m *SLAMonitor) autoEscalate(ctx context.Context, ticket *domain.Ticket, policy *domain.SLAPolicy, result sla.BreachResult, now time.Time) (bool, error) {
	auto := policy.AutoEscalation
	if !auto.Enabled || !result.Breached {
		return false, nil
	}
	if result.Type == sla.BreachTypeResponse && !auto.OnResponseBreach {
		return false, nil
	}
	if result.Type == sla.BreachTypeResolution && !auto.OnResolutionBreach {
		return false, nil
	}

	level := sla.ResolveEscalationLevel(policy, result.Percentage)
	if level == nil {
		level = levelByNumber(policy, auto.EscalationLevel)
	}
	if level == nil || ticket.EscalatedToLevel(level.Level) {
		return false, nil
	}

	fired, err := m.recordOnce(ctx, ticket.ID, domain.SLAEventKindEscalation, strconv.Itoa(level.Level))
	if err != nil {
		return false, err
	}

	ticket.EscalationHistory = append(ticket.EscalationHistory, domain.EscalationRecord{
		Level:     level.Level,
		Action:    level.Action,
		Timestamp: now,
	})
	ticket.Metrics.EscalationCount++
	if level.Action == domain.EscalationActionAssign && level.AssignTo != nil {
		ticket.AssignedTo = level.AssignTo
	}

	if fired {
		m.publish(ctx, events.Event{
			Type:     events.EventSLAEscalation,
			TicketID: ticket.ID,
			Payload: events.SLAEscalationPayload{
				Level:       level.Level,
				LevelName:   level.Name,
				Action:      level.Action,
				NotifyUsers: level.NotifyUsers,
				AssignedTo:  level.AssignTo,
				PolicyName:  policy.Name,
			},
		})
	}
	return true, nil
}

// recordOnce writes the dedup ledger entry. The returned bool is true only
// for the call that created the entry, so a threshold notifies at most once
// even if the ticket row update failed on a previous cycle.
func (m *SLAMonitor) recordOnce(ctx context.Context, ticketID string, kind domain.SLAEventKind, identifier string) (bool, error) {
	return m.ledger.Record(ctx, &domain.SLAEvent{
		TicketID:   ticketID,
		Kind:       kind,
		Identifier: identifier,
	})
}

func (m *SLAMonitor) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.now()
	}
	_ = m.dispatcher.Publish(ctx, event)
}

func levelByNumber(policy *domain.SLAPolicy, number int) *domain.EscalationLevel {
	for i := range policy.EscalationLevels {
		if policy.EscalationLevels[i].Level == number {
			return &policy.EscalationLevels[i]
		}
	}
	return nil
}
