// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package capi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/breaker"
	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/metrics"
	"github.com/tomtom215/pixelgate/internal/models"
)

// forwardTopic is the in-process topic carrying ForwardJobs.
const forwardTopic = "capi.forward"

// DefaultJobTimeout bounds one Graph API call.
const DefaultJobTimeout = 5 * time.Second

// ErrNotRunning is logged when Forward is called with no consumer attached.
var ErrNotRunning = errors.New("conversions dispatcher not running")

// Sender posts a request to the Graph API. Satisfied by *Client.
type Sender interface {
	Send(ctx context.Context, pixelID, accessToken string, req *Request) (*Response, error)
}

// ForwardJob is one queued forward. User data is already hashed, so no
// raw PII sits in the queue.
type ForwardJob struct {
	PixelID       string      `json:"pixel_id"`
	AccessToken   string      `json:"access_token"`
	TestEventCode string      `json:"test_event_code,omitempty"`
	Event         ServerEvent `json:"event"`
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Sender      Sender
	Workers     int
	QueueBuffer int
	JobTimeout  time.Duration
}

// Dispatcher queues forwards on a watermill gochannel and sends them from
// a bounded worker pool. It implements ingest.Forwarder.
type Dispatcher struct {
	sender     Sender
	pubsub     *gochannel.GoChannel
	workers    int
	limit      int64
	jobTimeout time.Duration

	// gate orders admission in Forward against subscribe and shutdown, so a
	// job counted in pending always has a consumer that will uncount it.
	gate       sync.RWMutex
	subscribed bool
	pending    atomic.Int64
}

// NewDispatcher creates a dispatcher. Call RunWithContext to start
// consuming; until then Forward drops jobs.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 8
	}
	if cfg.QueueBuffer < 1 {
		cfg.QueueBuffer = 1024
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}

	logger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("capi"))
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.QueueBuffer),
	}, logger)

	return &Dispatcher{
		sender:     cfg.Sender,
		pubsub:     pubsub,
		workers:    cfg.Workers,
		limit:      int64(cfg.QueueBuffer),
		jobTimeout: cfg.JobTimeout,
	}
}

// Forward queues ev for the Conversions API. It never blocks on the
// network and never returns an error; drops are logged and counted.
func (d *Dispatcher) Forward(ctx context.Context, ev *models.Event, user models.UserData, settings models.AppSettings) {
	log := logging.Ctx(ctx).With().
		Str("pixel_id", settings.MetaPixelID).
		Str("event_id", ev.ID.String()).
		Logger()

	job := ForwardJob{
		PixelID:       settings.MetaPixelID,
		AccessToken:   settings.MetaAccessToken,
		TestEventCode: settings.MetaTestEventCode,
		Event:         BuildServerEvent(ev, user),
	}
	payload, err := json.Marshal(&job)
	if err != nil {
		metrics.RecordCAPIForward(metrics.CAPIMarshal, 0)
		log.Error().Err(err).Msg("Failed to marshal conversion event")
		return
	}

	d.gate.RLock()
	defer d.gate.RUnlock()

	if !d.subscribed {
		metrics.RecordCAPIForward(metrics.CAPIQueueFull, 0)
		log.Warn().Err(ErrNotRunning).Msg("Dropping conversion event")
		return
	}

	if d.pending.Add(1) > d.limit {
		d.pending.Add(-1)
		metrics.RecordCAPIForward(metrics.CAPIQueueFull, 0)
		log.Warn().Int64("limit", d.limit).Msg("Conversion queue full, dropping event")
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := d.pubsub.Publish(forwardTopic, msg); err != nil {
		d.pending.Add(-1)
		metrics.RecordCAPIForward(metrics.CAPIQueueFull, 0)
		log.Error().Err(err).Msg("Failed to queue conversion event")
	}
}

func (d *Dispatcher) running() bool {
	d.gate.RLock()
	defer d.gate.RUnlock()
	return d.subscribed
}

// Pending returns the number of queued or executing jobs.
func (d *Dispatcher) Pending() int64 {
	return d.pending.Load()
}

// RunWithContext subscribes to the queue and runs the worker pool until
// ctx is canceled. It returns ctx.Err() on shutdown.
func (d *Dispatcher) RunWithContext(ctx context.Context) error {
	msgs, err := d.pubsub.Subscribe(ctx, forwardTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", forwardTopic, err)
	}
	d.gate.Lock()
	d.pending.Store(0)
	d.subscribed = true
	d.gate.Unlock()

	logging.Info().Int("workers", d.workers).Msg("Conversions dispatcher started")

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.consumeLoop(ctx, msgs)
		}()
	}
	wg.Wait()

	// gochannel discards a canceled subscriber's buffer. Holding the gate
	// means no Forward is between its check and its publish.
	d.gate.Lock()
	d.subscribed = false
	dropped := d.pending.Swap(0)
	d.gate.Unlock()

	logging.Info().Int64("dropped", dropped).Msg("Conversions dispatcher stopped")
	return ctx.Err()
}

func (d *Dispatcher) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			d.handle(ctx, msg)
			// Always ack: a Nack makes gochannel redeliver, and failed
			// forwards are not retried.
			msg.Ack()
			d.pending.Add(-1)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg *message.Message) {
	var job ForwardJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		metrics.RecordCAPIForward(metrics.CAPIMarshal, 0)
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Failed to decode conversion job")
		return
	}

	metrics.CAPIInFlight.Inc()
	defer metrics.CAPIInFlight.Dec()

	jobCtx, cancel := context.WithTimeout(ctx, d.jobTimeout)
	defer cancel()

	req := &Request{Data: []ServerEvent{job.Event}, TestEventCode: job.TestEventCode}

	start := time.Now()
	resp, err := d.sender.Send(jobCtx, job.PixelID, job.AccessToken, req)
	elapsed := time.Since(start)

	result := classifyResult(err)
	metrics.RecordCAPIForward(result, elapsed)

	if err == nil {
		logging.Debug().
			Str("pixel_id", job.PixelID).
			Str("event_id", job.Event.EventID).
			Str("event_name", job.Event.EventName).
			Int("events_received", resp.EventsReceived).
			Str("fbtrace_id", resp.FBTraceID).
			Msg("Conversion event forwarded")
		return
	}

	evt := logging.Warn().
		Err(err).
		Str("result", result).
		Str("pixel_id", job.PixelID).
		Str("event_id", job.Event.EventID).
		Str("event_name", job.Event.EventName).
		Dur("duration", elapsed)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		evt = evt.
			Int("http_status", apiErr.HTTPStatus).
			Str("error_type", apiErr.Type).
			Int("error_code", apiErr.Code).
			Int("error_subcode", apiErr.ErrorSubcode).
			Str("fbtrace_id", apiErr.FBTraceID)
	}
	evt.Msg("Conversion event forward failed")
}

func classifyResult(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return metrics.CAPISuccess
	case errors.Is(err, breaker.ErrOpen):
		return metrics.CAPICircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.CAPITimeout
	case errors.As(err, &apiErr):
		return metrics.CAPIAPIError
	default:
		return metrics.CAPIHTTPError
	}
}

// Close shuts the queue down. Queued jobs are discarded.
func (d *Dispatcher) Close() error {
	return d.pubsub.Close()
}
