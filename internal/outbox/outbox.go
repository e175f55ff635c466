// Package outbox delivers emails recorded in the outbox_messages table.
// Messages are written in the same transaction as the state change that
// produced them and sent afterwards by a Dispatcher, with retry.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"condomanager/internal/logger"
	"condomanager/internal/mail"
	"condomanager/internal/models"
)

// Config tunes the dispatcher.
type Config struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	BaseBackoff      time.Duration
	SendTimeout      time.Duration
	StaleAfter       time.Duration
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:     5 * time.Second,
		BatchSize:        20,
		MaxRetries:       models.DefaultOutboxMaxRetries,
		BaseBackoff:      30 * time.Second,
		SendTimeout:      30 * time.Second,
		StaleAfter:       5 * time.Minute,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Enqueue stores msg using tx, which should be the transaction of the
// triggering state change.
func Enqueue(tx *gorm.DB, msg *models.OutboxMessage) error {
	if msg.Kind == "" {
		msg.Kind = models.OutboxKindEmail
	}
	if msg.Status == "" {
		msg.Status = models.OutboxPending
	}
	if msg.MaxRetries == 0 {
		msg.MaxRetries = models.DefaultOutboxMaxRetries
	}
	if err := tx.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to enqueue outbox message: %w", err)
	}
	return nil
}

// Dispatcher polls the outbox and hands due messages to a Mailer.
type Dispatcher struct {
	db     *gorm.DB
	mailer mail.Mailer
	cfg    Config
	now    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Zero fields in cfg take defaults.
func NewDispatcher(db *gorm.DB, mailer mail.Mailer, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = def.BaseBackoff
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	if cfg.CleanupRetention <= 0 {
		cfg.CleanupRetention = def.CleanupRetention
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	return &Dispatcher{db: db, mailer: mailer, cfg: cfg, now: time.Now}
}

// Start runs the polling loop in the background until Stop or ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.loop(ctx)

	logger.Get().Infow("outbox dispatcher started",
		"poll_interval", d.cfg.PollInterval.String(),
		"batch_size", d.cfg.BatchSize,
	)
}

// Stop cancels the loop and waits for the in-flight batch, or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Get().Info("outbox dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()

	poll := time.NewTicker(d.cfg.PollInterval)
	defer poll.Stop()
	cleanup := time.NewTicker(d.cfg.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			if _, err := d.ProcessBatch(ctx); err != nil {
				logger.Get().Errorw("outbox batch failed", "error", err)
			}
		case <-cleanup.C:
			if n, err := d.Purge(ctx); err != nil {
				logger.Get().Errorw("outbox cleanup failed", "error", err)
			} else if n > 0 {
				logger.Get().Infow("outbox cleanup", "deleted", n)
			}
		}
	}
}

// ProcessBatch delivers up to BatchSize due messages and returns how many
// were sent successfully.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (int, error) {
	now := d.now()
	due, err := d.findDue(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		msg := &due[i]
		claimed, err := d.claim(ctx, msg, now)
		if err != nil {
			return sent, err
		}
		if !claimed {
			continue
		}
		if d.deliver(ctx, msg) {
			sent++
		}
	}
	return sent, nil
}

func (d *Dispatcher) findDue(ctx context.Context, now time.Time) ([]models.OutboxMessage, error) {
	var msgs []models.OutboxMessage
	err := d.db.WithContext(ctx).
		Where("status = ?", models.OutboxPending).
		Or("status = ? AND next_retry_at <= ?", models.OutboxFailed, now).
		Or("status = ? AND updated_at < ?", models.OutboxProcessing, now.Add(-d.cfg.StaleAfter)).
		Order("created_at ASC").
		Limit(d.cfg.BatchSize).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due outbox messages: %w", err)
	}
	return msgs, nil
}

// claim moves msg to processing with a conditional update so that only one
// dispatcher instance sends it.
func (d *Dispatcher) claim(ctx context.Context, msg *models.OutboxMessage, now time.Time) (bool, error) {
	q := d.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("id = ? AND status = ?", msg.ID, msg.Status)
	if msg.Status == models.OutboxProcessing {
		q = q.Where("updated_at < ?", now.Add(-d.cfg.StaleAfter))
	}
	res := q.Updates(map[string]any{"status": models.OutboxProcessing, "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim outbox message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	msg.Status = models.OutboxProcessing
	msg.UpdatedAt = now
	return true, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg *models.OutboxMessage) bool {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	sendErr := d.send(sendCtx, msg)
	now := d.now()
	if sendErr == nil {
		msg.MarkSent(now)
	} else {
		// The configured limit caps the per-message one.
		if msg.MaxRetries <= 0 || msg.MaxRetries > d.cfg.MaxRetries {
			msg.MaxRetries = d.cfg.MaxRetries
		}
		msg.MarkFailed(now, sendErr.Error(), d.cfg.BaseBackoff)
		log := logger.Get().With("outbox_id", msg.ID, "recipient", msg.Recipient, "retry_count", msg.RetryCount)
		if msg.Status == models.OutboxDead {
			log.Errorw("outbox message is dead", "error", sendErr)
		} else {
			log.Warnw("outbox delivery failed, will retry", "error", sendErr, "next_retry_at", msg.NextRetryAt)
		}
	}

	err := d.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("id = ?", msg.ID).Updates(map[string]any{
		"status":        msg.Status,
		"retry_count":   msg.RetryCount,
		"max_retries":   msg.MaxRetries,
		"last_error":    msg.LastError,
		"next_retry_at": msg.NextRetryAt,
		"processed_at":  msg.ProcessedAt,
		"updated_at":    now,
	}).Error
	if err != nil {
		logger.Get().Errorw("failed to record outbox delivery", "outbox_id", msg.ID, "error", err)
	}
	return sendErr == nil
}

func (d *Dispatcher) send(ctx context.Context, msg *models.OutboxMessage) error {
	switch msg.Kind {
	case models.OutboxKindEmail:
		return d.mailer.Send(ctx, msg.Recipient, msg.Subject, msg.Body)
	}
	return errors.New("unknown outbox message kind " + msg.Kind)
}

// Purge deletes sent messages older than the retention window.
func (d *Dispatcher) Purge(ctx context.Context) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", models.OutboxSent, d.now().Add(-d.cfg.CleanupRetention)).
		Delete(&models.OutboxMessage{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge outbox: %w", res.Error)
	}
	return res.RowsAffected, nil
}
