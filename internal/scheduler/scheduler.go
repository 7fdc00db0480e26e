package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"RenewraOracle/internal/logger"
	"RenewraOracle/internal/metrics"
	"RenewraOracle/internal/model"
	"RenewraOracle/internal/nav"
	"RenewraOracle/internal/notifier"
	"RenewraOracle/internal/recorder"
)

const (
	TriggerSchedule = "SCHEDULE"
	TriggerCommand  = "COMMAND"
	TriggerStartup  = "STARTUP"

	maxCommandMonths = 12
)

// Notifier delivers reports. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the oracle's periodic tasks and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *nav.Engine
	Notifier Notifier // nil disables notifications
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, engine *nav.Engine, n Notifier, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   engine,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the NAV, simulation and optional reload tasks.
// An empty reloadCron disables periodic reloads.
func (s *Scheduler) RegisterAll(navCron, simulateCron, reloadCron string) error {
	if _, err := s.Cron.AddFunc(navCron, func() { s.PublishNav(TriggerSchedule) }); err != nil {
		return fmt.Errorf("register nav task: %w", err)
	}
	if _, err := s.Cron.AddFunc(simulateCron, func() { s.Simulate(TriggerSchedule, 1) }); err != nil {
		return fmt.Errorf("register simulate task: %w", err)
	}
	if reloadCron != "" {
		if _, err := s.Cron.AddFunc(reloadCron, func() { s.Reload(TriggerSchedule) }); err != nil {
			return fmt.Errorf("register reload task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started with %d tasks", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// PublishNav computes the NAV, records it and notifies. The returned message
// is the report that was sent.
func (s *Scheduler) PublishNav(trigger string) string {
	r := s.Engine.Evaluate()
	result := nav.ResultLabel(r.Err)

	metrics.ObserveNav(r.NavCents, r.Breakdown, result)
	metrics.MonthlyYield.Set(float64(r.MonthlyYield))

	run := &recorder.NavRun{
		Trigger:      trigger,
		NavCents:     r.NavCents,
		Breakdown:    r.Breakdown,
		MonthlyYield: r.MonthlyYield,
		Result:       result,
	}

	var msg string
	if r.Err != nil {
		logger.Error("compute nav (%s): %v", trigger, r.Err)
		run.Error = r.Err.Error()
		msg = notifier.FormatNavFailure(r.Err, r.Breakdown)
	} else {
		logger.Info("nav published (%s): %d cents, yield %d", trigger, r.NavCents, r.MonthlyYield)
		msg = notifier.FormatNavReport(r.NavCents, r.Timestamp, r.Breakdown, r.MonthlyYield)
	}

	if err := s.Recorder.RecordNav(run); err != nil {
		logger.Error("record nav: %v", err)
	}
	if trigger != TriggerCommand {
		s.trySend(msg)
	}
	return msg
}

// Simulate advances the portfolio by months steps, recording each one.
func (s *Scheduler) Simulate(trigger string, months int) []*model.SimulationSummary {
	summaries := s.Engine.SimulateMonths(months)
	for _, sum := range summaries {
		logger.Info("%s (%s)", nav.Describe(sum), trigger)
		metrics.ObserveSimulation(sum)
		if err := s.Recorder.RecordSimulation(&recorder.SimulationRun{Trigger: trigger, Summary: sum}); err != nil {
			logger.Error("record simulation %s: %v", sum.RunID, err)
		}
	}
	if trigger != TriggerCommand && len(summaries) > 0 {
		s.trySend(notifier.FormatSimulationSummary(summaries[len(summaries)-1]))
	}
	return summaries
}

// Reload rereads the portfolio document. The previous snapshot stays
// active on failure.
func (s *Scheduler) Reload(trigger string) (*model.Portfolio, error) {
	p, err := s.Engine.Reload()
	metrics.ObserveReload(err)

	evt := &recorder.ReloadEvent{Trigger: trigger, Source: s.Engine.Store().SourceName()}
	if err != nil {
		logger.Error("reload portfolio (%s): %v", trigger, err)
		evt.Error = err.Error()
		if trigger == TriggerSchedule {
			s.trySend(fmt.Sprintf("❌ <b>Portfolio reload failed</b>: %v", err))
		}
	} else {
		evt.Projects = len(p.Projects)
		metrics.OperationalProjects.Set(float64(p.OperationalCount()))
		logger.Info("portfolio reloaded (%s): %d projects", trigger, len(p.Projects))
	}
	if rerr := s.Recorder.RecordReload(evt); rerr != nil {
		logger.Error("record reload: %v", rerr)
	}
	return p, err
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/nav":
		return s.PublishNav(TriggerCommand)
	case "/yield":
		return fmt.Sprintf("💰 Total monthly yield: <b>%s</b>", notifier.USD(s.Engine.TotalMonthlyYield()))
	case "/breakdown":
		return notifier.FormatBreakdown(s.Engine.Breakdown())
	case "/simulate":
		months := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 || n > maxCommandMonths {
				return fmt.Sprintf("months must be between 1 and %d", maxCommandMonths)
			}
			months = n
		}
		summaries := s.Simulate(TriggerCommand, months)
		return notifier.FormatSimulationSummary(summaries[len(summaries)-1])
	case "/reload":
		p, err := s.Reload(TriggerCommand)
		if err != nil {
			return fmt.Sprintf("❌ reload failed: %v", err)
		}
		return fmt.Sprintf("✅ reloaded %d projects (%d operational)", len(p.Projects), p.OperationalCount())
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /nav\n• /yield\n• /breakdown\n• /simulate [months]\n• /reload"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error("send notification: %v", err)
	}
}
