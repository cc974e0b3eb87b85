package main

// ToDo: Timers.Suspend, Timers.Resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"

	"github.com/gorhill/cronexpr"
)

var (
	Exists   = errors.New("id exists")
	NotFound = errors.New("not found")
)

type TimerEntry struct {
	Id      string      `json:"id"`
	Message interface{} `json:"message"`
	At      time.Time   `json:"at"`

	// Cron, when not "", makes this timer recurring.  At then
	// holds the next firing time.
	Cron string `json:"cron,omitempty"`

	ctl chan bool
}

type Timers struct {
	Errors chan interface{} `json:"-" yaml:"-"`

	sync.Mutex

	timers map[string]*TimerEntry
	ctl    chan bool
	emit   handlers.Emitter
}

func NewTimers(emitter handlers.Emitter) *Timers {
	return &Timers{
		timers: make(map[string]*TimerEntry, 32),
		emit:   emitter,
		ctl:    make(chan bool),
	}
}

func (ts *Timers) MarshalJSON() ([]byte, error) {
	ts.Lock()
	m := map[string]interface{}{
		"map": ts.timers,
	}
	bs, err := json.Marshal(&m)
	ts.Unlock()
	return bs, err
}

func (ts *Timers) MarshalYAML() (interface{}, error) {
	ts.Lock()
	cp := Copy(map[string]interface{}{
		"map": ts.timers,
	})
	ts.Unlock()
	return cp, nil
}

// Add schedules a one-shot timer.
func (ts *Timers) Add(ctx context.Context, id string, message interface{}, in time.Duration) error {
	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.timers[id]; have {
		return Exists
	}

	te := &TimerEntry{
		Id:      id,
		Message: message,
		At:      time.Now().UTC().Add(in),
		ctl:     make(chan bool),
	}

	ts.timers[id] = te

	stop := func() {
		if err := ts.Rem(ctx, id); err != nil {
			ts.err(fmt.Errorf("Timers rem error %v id=%s", err, id))
		}
	}

	go func() {
		timer := time.NewTimer(time.Until(te.At))
		select {
		case <-ctx.Done():
			stop()
		case <-te.ctl:
			// We only get here via a Rem() call.
		case <-ts.ctl:
			stop()

			// Not exactly what we want ...
		case <-timer.C:
			Logf("Timers firing %s", JS(ts))
			if err := ts.emit(ctx, te.Message); err != nil {
				ts.err(fmt.Errorf("Timers emit error %v id=%s", err, id))
			}

			ts.Lock()
			delete(ts.timers, id)
			ts.Unlock()
		}
	}()

	return nil
}

// AddCron schedules a recurring timer from a crontab expression.
//
// The timer fires at each time the expression produces until the
// timer is removed or the context is done.
func (ts *Timers) AddCron(ctx context.Context, id string, message interface{}, cronExpr string) error {
	c, err := cronexpr.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("bad cron expression '%s': %s", cronExpr, err)
	}

	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.timers[id]; have {
		return Exists
	}

	te := &TimerEntry{
		Id:      id,
		Message: message,
		At:      c.Next(time.Now()),
		Cron:    cronExpr,
		ctl:     make(chan bool),
	}

	if te.At.IsZero() {
		return fmt.Errorf("cron expression '%s' never fires", cronExpr)
	}

	ts.timers[id] = te

	stop := func() {
		if err := ts.Rem(ctx, id); err != nil && err != NotFound {
			ts.err(fmt.Errorf("Timers rem error %v id=%s", err, id))
		}
	}

	go func() {
		for {
			timer := time.NewTimer(time.Until(te.At))
			select {
			case <-ctx.Done():
				timer.Stop()
				stop()
				return
			case <-te.ctl:
				timer.Stop()
				// We only get here via a Rem() call.
				return
			case <-ts.ctl:
				timer.Stop()
				stop()
				return
			case <-timer.C:
				Logf("Timers firing cron %s", te.Id)
				if err := ts.emit(ctx, te.Message); err != nil {
					ts.err(fmt.Errorf("Timers emit error %v id=%s", err, id))
				}
			}

			next := c.Next(time.Now())
			if next.IsZero() {
				stop()
				return
			}

			ts.Lock()
			te.At = next
			ts.Unlock()
		}
	}()

	return nil
}

func (ts *Timers) Shutdown() error {
	close(ts.ctl)
	return nil
}

func (ts *Timers) Rem(ctx context.Context, id string) error {
	ts.Lock()
	defer ts.Unlock()

	te, have := ts.timers[id]
	if !have {
		return NotFound
	}

	delete(ts.timers, id)

	close(te.ctl)

	return nil
}

func (ts *Timers) err(err error) {
	if ts.Errors != nil {
		ts.Errors <- err
	} else {
		log.Println(err)
	}
}
