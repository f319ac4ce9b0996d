// Package calendar implements the calendar:* built-in workflows (§4.K):
// create and list. Grounded on the same effect-port shape as mail — a
// small interface standing in for a live Calendar API, with an in-memory
// fake as the default, unit-testable implementation.
package calendar

import (
	"context"
	"sort"
	"strconv"
	"time"
)

// Event is one calendar event as the Client surfaces it.
type Event struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

// Client is the effect port a calendar workflow dispatches through.
type Client interface {
	Create(ctx context.Context, title string, start, end time.Time) (*Event, error)
	List(ctx context.Context, from, to time.Time) ([]Event, error)
}

// FakeClient is an in-memory Client, the default adapter and the one used
// in tests.
type FakeClient struct {
	Events []Event
	nextID int
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (c *FakeClient) Create(_ context.Context, title string, start, end time.Time) (*Event, error) {
	c.nextID++
	ev := Event{ID: "evt-" + strconv.Itoa(c.nextID), Title: title, Start: start, End: end}
	c.Events = append(c.Events, ev)
	return &ev, nil
}

func (c *FakeClient) List(_ context.Context, from, to time.Time) ([]Event, error) {
	var out []Event
	for _, e := range c.Events {
		if !e.Start.Before(from) && !e.Start.After(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
