package whatsapp

import (
	mathrand "math/rand/v2"
	"time"
)

// ReconnectPolicy bounds automatic reconnection. After MaxAttempts consecutive
// failures the session stops retrying and waits for an operator.
type ReconnectPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	JitterMax   time.Duration
}

func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		MaxAttempts: 10,
		BaseBackoff: 2 * time.Second,
		MaxBackoff:  2 * time.Minute,
		JitterMax:   500 * time.Millisecond,
	}
}

func (p ReconnectPolicy) normalized() ReconnectPolicy {
	def := DefaultReconnectPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = def.BaseBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = def.MaxBackoff
	}
	if p.MaxBackoff < p.BaseBackoff {
		p.MaxBackoff = p.BaseBackoff
	}
	if p.JitterMax < 0 {
		p.JitterMax = 0
	}
	return p
}

// Exhausted reports whether attempt (1-based) is past the budget.
func (p ReconnectPolicy) Exhausted(attempt int) bool {
	return attempt > p.normalized().MaxAttempts
}

// Delay is the capped exponential delay for attempt (1-based), without jitter.
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	backoff := p.BaseBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= p.MaxBackoff || backoff <= 0 {
			return p.MaxBackoff
		}
	}
	if backoff > p.MaxBackoff {
		return p.MaxBackoff
	}
	return backoff
}

// Backoff is Delay plus a random jitter up to JitterMax.
func (p ReconnectPolicy) Backoff(attempt int) time.Duration {
	delay := p.Delay(attempt)
	jitterMax := p.normalized().JitterMax
	if jitterMax > 0 {
		delay += time.Duration(mathrand.Int64N(int64(jitterMax) + 1))
	}
	return delay
}
