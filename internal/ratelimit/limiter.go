// Package ratelimit provides per-identity sliding-window admission control.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow admits at most maxRequests per identity within any rolling
// window. State is kept in memory as one timestamp list per identity;
// admission decisions for different identities never contend on the same
// lock once the identity entry exists.
type SlidingWindow struct {
	maxRequests int
	window      time.Duration

	mu         sync.RWMutex
	identities map[string]*identityWindow

	stopOnce sync.Once
	stopCh   chan struct{}
}

type identityWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
	lastSeen   time.Time

	// gone marks a window the janitor removed from the map. A caller that
	// looked the window up before the removal must not record into it.
	gone bool
}

// NewSlidingWindow creates a limiter admitting maxRequests per identity per
// window. A maxRequests of zero (or less) rejects everything; a window of
// zero means only requests at the exact same instant count against each
// other. A background janitor prunes identities idle for a full window.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	sw := &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		identities:  make(map[string]*identityWindow),
		stopCh:      make(chan struct{}),
	}
	go sw.janitor()
	return sw
}

// Admit reports whether a request from identity at instant now is within
// quota, recording it when admitted. Rejected requests are not recorded.
// The error return exists to satisfy the admission port; the in-memory
// limiter never fails.
func (sw *SlidingWindow) Admit(_ context.Context, identity string, now time.Time) (bool, error) {
	if sw.maxRequests <= 0 {
		return false, nil
	}

	iw := sw.lockIdentity(identity)
	defer iw.mu.Unlock()

	iw.lastSeen = now

	// Evict the expired prefix. Timestamps arrive in call order, so the
	// first fresh entry bounds the eviction.
	cutoff := 0
	for cutoff < len(iw.timestamps) && now.Sub(iw.timestamps[cutoff]) > sw.window {
		cutoff++
	}
	if cutoff > 0 {
		iw.timestamps = append(iw.timestamps[:0], iw.timestamps[cutoff:]...)
	}

	if len(iw.timestamps) >= sw.maxRequests {
		return false, nil
	}

	iw.timestamps = append(iw.timestamps, now)
	return true, nil
}

// Close stops the janitor. Admit remains usable after Close.
func (sw *SlidingWindow) Close() {
	sw.stopOnce.Do(func() { close(sw.stopCh) })
}

// lockIdentity returns the identity's window with its mutex held. A window
// the janitor pruned after the lookup is discarded and the lookup retried,
// so no request is ever recorded into an orphaned window.
func (sw *SlidingWindow) lockIdentity(identity string) *identityWindow {
	for {
		iw := sw.identityFor(identity)
		iw.mu.Lock()
		if !iw.gone {
			return iw
		}
		iw.mu.Unlock()
	}
}

func (sw *SlidingWindow) identityFor(identity string) *identityWindow {
	sw.mu.RLock()
	iw, ok := sw.identities[identity]
	sw.mu.RUnlock()
	if ok {
		return iw
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if iw, ok = sw.identities[identity]; ok {
		return iw
	}
	iw = &identityWindow{}
	sw.identities[identity] = iw
	return iw
}

// janitor drops identities that have been idle for at least a full window,
// keeping the map bounded by the set of recently active identities.
func (sw *SlidingWindow) janitor() {
	interval := sw.window
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.stopCh:
			return
		case <-ticker.C:
			sw.prune(time.Now())
		}
	}
}

func (sw *SlidingWindow) prune(now time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	for identity, iw := range sw.identities {
		iw.mu.Lock()
		if now.Sub(iw.lastSeen) > sw.window {
			iw.gone = true
			delete(sw.identities, identity)
		}
		iw.mu.Unlock()
	}
}
