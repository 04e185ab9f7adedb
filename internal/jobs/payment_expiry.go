// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// PaymentExpirer is implemented by the payment service.
type PaymentExpirer interface {
	ExpireOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// PaymentExpiryJob marks PENDING payments past their expiration date as
// EXPIRED on a cron schedule.
type PaymentExpiryJob struct {
	payments PaymentExpirer
	schedule string
	cron     *cron.Cron
}

func NewPaymentExpiryJob(payments PaymentExpirer, schedule string) *PaymentExpiryJob {
	return &PaymentExpiryJob{payments: payments, schedule: schedule, cron: cron.New()}
}

func (j *PaymentExpiryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := j.payments.ExpireOverdue(ctx, time.Now()); err != nil {
			log.Printf("payment expiry sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	log.Printf("payment expiry job started: schedule=%q", j.schedule)
	return nil
}

func (j *PaymentExpiryJob) Stop() {
	j.cron.Stop()
}
