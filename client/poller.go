package client

import (
	"context"
	"errors"
	"log"
	"time"

	"llm_queue/internal/queue"
)

// pollFloor caps how aggressively the poller retries when the server gives
// no better schedule (transport errors, draft confirmation races).
const pollFloor = 2 * time.Second

// defaultHeartbeatInterval keeps waiting entries alive well inside the
// server's liveness threshold.
const defaultHeartbeatInterval = 30 * time.Second

// Poller drives one membership through the queue: it joins, polls status on
// the server-suggested schedule, confirms a drafted slot and hands back the
// granted session. A separate fixed-interval heartbeat loop keeps liveness
// independent of how deep in the queue the entry sits.
type Poller struct {
	client *Client
	userID string

	// HeartbeatInterval overrides the 30s default when positive.
	HeartbeatInterval time.Duration

	// Optional observers. OnDraft fires when the slot is offered, before
	// the poller confirms it. OnConnected fires once with the granted
	// session. OnEvicted fires when the server no longer knows the entry.
	OnDraft     func(StatusInfo)
	OnConnected func(Session)
	OnEvicted   func(error)
}

// NewPoller creates a poller for userID. An empty userID lets the server
// mint one on join; it is available from UserID afterwards.
func NewPoller(c *Client, userID string) *Poller {
	return &Poller{client: c, userID: userID}
}

// UserID returns the identity the poller is driving.
func (p *Poller) UserID() string {
	return p.userID
}

// Run blocks until the entry is connected, evicted or the context ends.
// Exactly one status request is in flight at any time; transport errors are
// retried on the same schedule without a state transition.
func (p *Poller) Run(ctx context.Context) (Session, error) {
	res, err := p.client.Join(ctx, p.userID)
	switch {
	case err == nil:
		p.userID = res.UserID
		log.Printf("queue: joined as %s at position %d", res.UserID, res.Position)
	case errors.Is(err, ErrAlreadyQueued):
		// A live entry for this user already exists: keep driving it.
	default:
		return Session{}, err
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go p.heartbeatLoop(hbCtx)

	for {
		status, err := p.client.Status(ctx, p.userID)
		switch {
		case errors.Is(err, ErrServiceUnavailable):
			log.Printf("queue: status unavailable, retrying: %v", err)
			if !p.sleep(ctx, pollFloor) {
				return Session{}, ctx.Err()
			}
			continue
		case errors.Is(err, ErrNotFound):
			if p.OnEvicted != nil {
				p.OnEvicted(err)
			}
			return Session{}, err
		case err != nil:
			return Session{}, err
		}

		switch status.Status {
		case StatusDraft:
			if sess, ok := p.confirm(ctx, status); ok {
				return sess, nil
			}
			// Lost the race for the slot or the server is struggling:
			// the next status read decides.
			if !p.sleep(ctx, pollFloor) {
				return Session{}, ctx.Err()
			}
			continue
		case StatusConnected:
			// Already holding a slot (e.g. resumed after a restart).
			// There is no token to recover; the deadline still stands.
			sess := Session{Status: StatusConnected}
			if status.SessionExpiresAt != nil {
				sess.SessionExpiresAt = *status.SessionExpiresAt
				sess.SessionDuration = int64(time.Until(sess.SessionExpiresAt).Seconds())
			}
			if p.OnConnected != nil {
				p.OnConnected(sess)
			}
			return sess, nil
		}

		if !p.sleep(ctx, p.nextDelay(ctx, status.Position)) {
			return Session{}, ctx.Err()
		}
	}
}

// confirm accepts the offered slot. Returns ok=false when the offer is gone
// or the server cannot be reached; eviction surfaces on the next status read.
func (p *Poller) confirm(ctx context.Context, status StatusInfo) (Session, bool) {
	if p.OnDraft != nil {
		p.OnDraft(status)
	}

	sess, err := p.client.Confirm(ctx, p.userID)
	if err != nil {
		log.Printf("queue: confirm failed: %v", err)
		return Session{}, false
	}
	if p.OnConnected != nil {
		p.OnConnected(sess)
	}
	return sess, true
}

// nextDelay asks the server for the recommended poll delay. When the timers
// endpoint is unreachable it falls back to the same computation the server
// runs, with the own position as a lower bound on queue depth.
func (p *Poller) nextDelay(ctx context.Context, position int) time.Duration {
	timer, err := p.client.Timer(ctx, p.userID)
	if err == nil && timer.TimerType == "poll" && timer.TTL > 0 {
		return time.Duration(timer.TTL) * time.Second
	}
	return queue.NextDelay(position, position)
}

// sleep waits for d or until the context ends; reports false on cancellation.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	if d < pollFloor {
		d = pollFloor
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// heartbeatLoop refreshes liveness at a fixed interval regardless of the
// poll schedule. It stops once the server forgets the entry; transport
// errors are ignored until the next tick.
func (p *Poller) heartbeatLoop(ctx context.Context) {
	interval := p.HeartbeatInterval
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := p.client.Heartbeat(ctx, p.userID)
			if err != nil && !errors.Is(err, ErrServiceUnavailable) {
				return
			}
		}
	}
}
