package natskv

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"mesa-alloc/internal/core/domain"
)

// CampaignHeader carries the campaign id of published results.
const CampaignHeader = "Alloc-Campaign-Id"

// Publisher implements port.ResultPublisher. Committed outputs are
// published on <prefix>.results.<campaignId>.
type Publisher struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
}

// NewPublisher returns a publisher on nc. timeout bounds the flush when
// the caller's context has no deadline.
func NewPublisher(nc *nats.Conn, prefix string, timeout time.Duration) *Publisher {
	return &Publisher{nc: nc, prefix: prefix, timeout: timeout}
}

// ResultSubject returns the subject results of a campaign are published on.
func ResultSubject(prefix string, campaignID int64) string {
	return prefix + ".results." + strconv.FormatInt(campaignID, 10)
}

// Publish sends out and waits for the server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, campaignID int64, out domain.BudgetAllocationOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(ResultSubject(p.prefix, campaignID))
	msg.Header.Set(CampaignHeader, strconv.FormatInt(campaignID, 10))
	msg.Data = data
	if err = p.nc.PublishMsg(msg); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.nc.FlushWithContext(ctx)
}
