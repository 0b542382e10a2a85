package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// ViewKind is which of the two panels is shown.
type ViewKind int

const (
	Listing ViewKind = iota
	Detail
)

func (v ViewKind) String() string {
	if v == Detail {
		return "detail"
	}
	return "listing"
}

// View is a snapshot of everything the page renders.
type View struct {
	Current    ViewKind
	List       ListPanel
	Detail     DetailPanel
	Background string
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Messages       Messages
	Location       *time.Location
	Backgrounds    Backgrounds
	RequestTimeout time.Duration
}

// Controller owns the page state of one browser session: the match list,
// the prediction detail and which of the two is visible.
//
// Every SelectMatch starts a new selection. A prediction is applied only if
// no newer selection or GoBack happened while it was in flight; the older
// request's context is cancelled.
type Controller struct {
	backend Backend
	opts    ControllerOptions

	mu         sync.Mutex
	current    ViewKind
	matches    []models.Match
	list       ListPanel
	detail     DetailPanel
	background string
	token      uint64
	cancel     context.CancelFunc
	closed     bool

	wg sync.WaitGroup
}

// NewController creates the controller and loads the match list once.
func NewController(ctx context.Context, backend Backend, opts ControllerOptions) *Controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	c := &Controller{
		backend: backend,
		opts:    opts,
		current: Listing,
		detail:  DetailPanel{Bars: RenderBars(0, 0, 0)},
	}
	c.LoadMatches(ctx)
	return c
}

// LoadMatches fetches the match list and replaces the list panel.
// Failures show the fetch-failed placeholder and are not retried.
func (c *Controller) LoadMatches(ctx context.Context) {
	if c.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
	}

	matches, err := c.backend.Matches(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		slog.Error("Failed to fetch matches", "error", err)
		c.matches = nil
		c.list = ListPanel{Placeholder: c.opts.Messages.FetchFailed}
		return
	}
	c.matches = matches
	c.list = renderList(matches, c.opts.Location, c.opts.Messages)
}

// Match returns the listed match with the given id.
func (c *Controller) Match(id int64) (models.Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.matches {
		if m.ID == id {
			return m, true
		}
	}
	return models.Match{}, false
}

// SelectMatch switches to the detail panel for m right away, with bars reset
// and the analyzing placeholder, then requests the prediction in the
// background. ctx bounds the background request.
func (c *Controller) SelectMatch(ctx context.Context, m models.Match) {
	var (
		reqCtx context.Context
		cancel context.CancelFunc
	)
	if c.opts.RequestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.token++
	token := c.token
	c.cancel = cancel
	c.current = Detail
	c.background = c.opts.Backgrounds.For(m)
	c.detail = DetailPanel{
		MatchID:   m.ID,
		HomeName:  m.HomeTeam.Name,
		AwayName:  m.AwayTeam.Name,
		HomeCrest: m.HomeTeam.Crest,
		AwayCrest: m.AwayTeam.Crest,
		Bars:      RenderBars(0, 0, 0),
		Analysis:  c.opts.Messages.Analyzing,
		Pending:   true,
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()
		pred, err := c.backend.Predict(reqCtx, m)
		c.applyPrediction(token, m, pred, err)
	}()
}

func (c *Controller) applyPrediction(token uint64, m models.Match, pred models.Prediction, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		slog.Debug("Discarding stale prediction", "match", m.Name(), "error", err)
		return
	}
	c.cancel = nil
	c.detail.Pending = false

	if err != nil {
		slog.Error("Failed to fetch prediction", "match", m.Name(), "error", err)
		c.detail.Analysis = c.opts.Messages.PredictFailed
		return
	}
	c.detail.Bars = RenderBars(pred.HomeWin, pred.Draw, pred.AwayWin)
	c.detail.Analysis = pred.Analysis
}

// GoBack returns to the match list without refetching it and clears the
// background. A prediction still in flight is cancelled and ignored.
func (c *Controller) GoBack() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.detail.Pending = false
	c.current = Listing
	c.background = ""
}

// View returns a snapshot of the current page state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.list
	list.Cards = append([]Card(nil), c.list.Cards...)
	return View{
		Current:    c.current,
		List:       list,
		Detail:     c.detail,
		Background: c.background,
	}
}

// Wait blocks until no prediction request is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels any in-flight prediction request and waits for it.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}
