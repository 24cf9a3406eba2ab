// Package audit periodically checks every owner's stored balances against the transaction log
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

// DefaultSchedule runs the audit once an hour
const DefaultSchedule = "@every 1h"

// Result represents the outcome of one audit run
type Result struct {
	StartedAt time.Time
	Owners    int
	Drifted   []uuid.UUID
	Failed    []uuid.UUID
}

// Auditor runs summary.Reconcile for every owner
type Auditor struct {
	Store   domain.Store
	Summary *summary.SummaryService
	Logger  logrus.FieldLogger

	now  func() time.Time
	cron *cron.Cron
}

// NewAuditor creates a new Auditor instance
func NewAuditor(store domain.Store, logger logrus.FieldLogger) *Auditor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Auditor{
		Store:   store,
		Summary: summary.NewSummaryService(store),
		Logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce reconciles every owner and logs each drift at error level.
// A failure for one owner does not stop the others.
func (a *Auditor) RunOnce(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: a.now()}

	var owners []uuid.UUID
	err := a.Store.View(ctx, func(repos domain.Repositories) error {
		var err error
		owners, err = repos.Wallets().ListOwners(ctx)
		return err
	})
	if err != nil {
		return nil, domain.StorageError("list owners", err)
	}
	result.Owners = len(owners)

	for _, owner := range owners {
		report, err := a.Summary.Reconcile(ctx, owner, a.now())
		if err != nil {
			result.Failed = append(result.Failed, owner)
			a.Logger.WithError(err).WithField("owner_id", owner).Error("reconciliation failed")
			continue
		}
		if !report.Consistent() {
			result.Drifted = append(result.Drifted, owner)
			a.logDrift(report)
		}
	}

	a.Logger.WithFields(logrus.Fields{
		"owners":   result.Owners,
		"drifted":  len(result.Drifted),
		"failed":   len(result.Failed),
		"duration": a.now().Sub(result.StartedAt).String(),
	}).Info("ledger audit finished")

	return result, nil
}

func (a *Auditor) logDrift(report *summary.ReconcileReport) {
	for _, d := range report.WalletDrifts {
		a.Logger.WithFields(logrus.Fields{
			"owner_id":  report.OwnerID,
			"wallet_id": d.WalletID,
			"stored":    d.Stored.String(),
			"derived":   d.Derived.String(),
		}).Error("wallet balance drift detected")
	}
	for _, d := range report.GoalDrifts {
		a.Logger.WithFields(logrus.Fields{
			"owner_id":          report.OwnerID,
			"goal_id":           d.GoalID,
			"stored":            d.Stored.String(),
			"derived":           d.Derived.String(),
			"achieved_flag_bad": d.AchievedFlagBad,
		}).Error("goal progress drift detected")
	}
	if !report.StoredTotal.Equal(report.DerivedTotal) {
		a.Logger.WithFields(logrus.Fields{
			"owner_id": report.OwnerID,
			"stored":   report.StoredTotal.String(),
			"derived":  report.DerivedTotal.String(),
		}).Error("owner balance drift detected")
	}
}

// Start schedules RunOnce using a cron spec such as "@every 1h" or "0 3 * * *"
func (a *Auditor) Start(ctx context.Context, schedule string) error {
	if a.cron != nil {
		return errors.New("auditor already started")
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		if _, err := a.RunOnce(ctx); err != nil {
			a.Logger.WithError(err).Error("ledger audit failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid audit schedule %q: %w", schedule, err)
	}

	a.cron = c
	c.Start()
	a.Logger.WithField("schedule", schedule).Info("ledger auditor started")
	return nil
}

// Stop halts the schedule and waits for a running audit to finish
func (a *Auditor) Stop() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	a.cron = nil
}
