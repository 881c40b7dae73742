package natskv

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"mesa-alloc/internal/core/domain"
	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/validation"
)

// Reply is the response to a pass request.
type Reply struct {
	Result *port.PassResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Kind   string           `json:"kind,omitempty"`
}

// RequestSubject returns the subject pass requests are received on.
func RequestSubject(prefix string) string {
	return prefix + ".requests"
}

// Dispatcher consumes pass requests from a queue group, so each request
// is handled by exactly one instance.
type Dispatcher struct {
	nc        *nats.Conn
	uc        port.AllocationUseCase
	validator *validation.Validator
	logger    *slog.Logger
	subject   string
	queue     string
	timeout   time.Duration

	sub *nats.Subscription
}

// NewDispatcher creates a dispatcher for <prefix>.requests.
func NewDispatcher(
	nc *nats.Conn,
	uc port.AllocationUseCase,
	validator *validation.Validator,
	logger *slog.Logger,
	prefix, queue string,
	timeout time.Duration,
) *Dispatcher {
	return &Dispatcher{
		nc:        nc,
		uc:        uc,
		validator: validator,
		logger:    logger,
		subject:   RequestSubject(prefix),
		queue:     queue,
		timeout:   timeout,
	}
}

// Start subscribes to the request subject. Passes run with the values of
// ctx but are not cancelled with it.
func (d *Dispatcher) Start(ctx context.Context) error {
	sub, err := d.nc.QueueSubscribe(d.subject, d.queue, func(msg *nats.Msg) {
		d.handle(context.WithoutCancel(ctx), msg)
	})
	if err != nil {
		return err
	}
	d.sub = sub
	d.logger.Info("dispatcher listening", slog.String("subject", d.subject), slog.String("queue", d.queue))
	return d.nc.Flush()
}

// Stop drains the subscription so in-flight requests still get a reply.
func (d *Dispatcher) Stop() error {
	if d.sub == nil {
		return nil
	}
	return d.sub.Drain()
}

// Run starts the dispatcher and blocks until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return d.Stop()
}

func (d *Dispatcher) handle(ctx context.Context, msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var reply Reply
	req, err := d.decode(msg.Data)
	if err == nil {
		reply.Result, err = d.uc.RunPass(ctx, req)
	}
	if err != nil {
		reply.Error = err.Error()
		reply.Kind = domain.ErrorKind(err)
		d.logger.Warn("pass request failed", slog.String("kind", reply.Kind), slog.Any("error", err))
	}

	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		d.logger.Error("encode reply", slog.Any("error", err))
		return
	}
	if err = msg.Respond(data); err != nil {
		d.logger.Error("respond to pass request", slog.Any("error", err))
	}
}

func (d *Dispatcher) decode(data []byte) (port.PassRequest, error) {
	var req port.PassRequest
	if err := d.validator.Validate(validation.PassRequest, data); err != nil {
		return req, err
	}
	err := json.Unmarshal(data, &req)
	return req, err
}
