package hooks

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/notify"
)

// ErrClosed is returned by SetUser after Close.
var ErrClosed = errors.New("hook is closed")

// CountFetcher loads the unread message count of a user.
type CountFetcher interface {
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// UnreadState is a snapshot of an UnreadCount hook.
type UnreadState struct {
	UserID string
	Count  int64
	Err    error
}

// UnreadCount keeps the unread message count of one user live. Each
// SetUser acquires at most one subscription, and it is released exactly once
// when the user changes or the hook is closed.
type UnreadCount struct {
	api CountFetcher
	sub notify.Subscriber
	log log.FieldLogger

	// setMu serializes SetUser and Close.
	setMu  sync.Mutex
	closed bool
	active *watch

	mu    sync.Mutex
	state UnreadState
	gen   uint64
}

type watch struct {
	sub    *notify.Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

// NewUnreadCount creates a hook with no user.
func NewUnreadCount(api CountFetcher, sub notify.Subscriber, logger log.FieldLogger) *UnreadCount {
	return &UnreadCount{api: api, sub: sub, log: logger}
}

// State returns the current snapshot.
func (u *UnreadCount) State() UnreadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// SetUser switches the hook to userID. The previous user's subscription is
// released first. An empty userID only clears the hook.
func (u *UnreadCount) SetUser(ctx context.Context, userID string) error {
	u.setMu.Lock()
	defer u.setMu.Unlock()

	if u.closed {
		return ErrClosed
	}
	if u.active != nil && u.State().UserID == userID {
		return nil
	}

	u.release()
	u.mu.Lock()
	u.gen++
	gen := u.gen
	u.state = UnreadState{UserID: userID}
	u.mu.Unlock()

	if userID == "" {
		return nil
	}

	// Subscribe before the first fetch so no change between the two is missed.
	sub, err := u.sub.Subscribe(ctx, notify.TableMessages, userID)
	if err != nil {
		u.log.WithError(err).WithField("user_id", userID).Error("Failed to subscribe to message changes")
		return err
	}

	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w := &watch{sub: sub, cancel: cancel, done: make(chan struct{})}
	u.active = w

	u.fetch(wctx, gen, userID)
	go u.run(wctx, w, gen, userID)
	return nil
}

// Close releases the subscription. It is safe to call more than once.
func (u *UnreadCount) Close() {
	u.setMu.Lock()
	defer u.setMu.Unlock()
	u.release()
	u.closed = true

	u.mu.Lock()
	u.gen++
	u.mu.Unlock()
}

// release tears down the active watch and waits for its goroutine. Callers
// hold setMu.
func (u *UnreadCount) release() {
	w := u.active
	if w == nil {
		return
	}
	u.active = nil
	w.sub.Close()
	w.cancel()
	<-w.done
}

func (u *UnreadCount) run(ctx context.Context, w *watch, gen uint64, userID string) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.sub.C:
			if !ok {
				return
			}
			u.log.WithFields(log.Fields{"user_id": userID, "op": ev.Op, "message_id": ev.ID}).Debug("Message change, refreshing unread count")
			u.fetch(ctx, gen, userID)
		}
	}
}

// fetch loads the count and applies it unless the hook has moved on.
func (u *UnreadCount) fetch(ctx context.Context, gen uint64, userID string) {
	n, err := u.api.UnreadCount(ctx, userID)

	u.mu.Lock()
	defer u.mu.Unlock()
	if gen != u.gen {
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			u.log.WithError(err).WithField("user_id", userID).Warn("Failed to fetch unread count")
		}
		u.state.Err = err
		return
	}
	u.state.Count = n
	u.state.Err = nil
}
