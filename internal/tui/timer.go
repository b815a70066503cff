package tui

import "time"

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel measures focused time for one session. Paused time does not
// count.
type timerModel struct {
	now func() time.Time

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(idleTimeout time.Duration) timerModel {
	return timerModel{
		now:          time.Now,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  idleTimeout,
	}
}

func (t *timerModel) start() {
	now := t.now()
	t.state = timerRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.lastActivity = now
	t.isIdle = false
}

// stop ends timing and returns the focused duration.
func (t *timerModel) stop() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	d := t.currentElapsed()
	t.state = timerStopped
	t.elapsed = 0
	return d
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += t.now().Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = t.now()
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state == timerRunning {
		t.elapsed = t.now().Sub(t.startTime) - t.pauseGap

		// the idle stretch itself is not focused time
		if t.idleTimeout > 0 && t.now().Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
			t.isIdle = true
			t.state = timerPaused
			t.pausedAt = t.lastActivity
		}
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}
