package presenter

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alexivanou/cityweather/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher starts a lookup and reports the outcome through done exactly once
type Fetcher interface {
	FetchAsync(ctx context.Context, city string, done func(model.WeatherRecord, error))
}

// Counters summarises lookups handled by a presenter
type Counters struct {
	Submitted uint64 `json:"submitted"`
	Succeeded uint64 `json:"succeeded"`
	Failed    uint64 `json:"failed"`
	Stale     uint64 `json:"stale"`
}

// Presenter owns the request state of the lookup screen.
//
// All state transitions run on a single loop goroutine started by Run.
// Fetch completions arrive on arbitrary goroutines and are posted back
// to the loop before they touch state. Each submission gets a new
// generation; a completion from an older generation is dropped.
type Presenter struct {
	fetcher Fetcher
	logger  *zap.Logger

	ops  chan func()
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once
	runOnce   sync.Once

	current atomic.Pointer[model.State]

	subMu  sync.Mutex
	subs   map[int]chan model.State
	nextID int
	closed bool

	submitted atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	stale     atomic.Uint64

	// loop-owned
	runCtx     context.Context
	generation uint64
	inflight   *request
}

type request struct {
	id         string
	city       string
	generation uint64
	cancel     context.CancelFunc
}

// New creates a presenter in the idle state. Run must be called before Submit.
func New(fetcher Fetcher, logger *zap.Logger) *Presenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Presenter{
		fetcher: fetcher,
		logger:  logger,
		ops:     make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[int]chan model.State),
	}
	idle := model.IdleState()
	p.current.Store(&idle)
	return p
}

// Run drives the state loop until ctx is done or Close is called
func (p *Presenter) Run(ctx context.Context) {
	started := false
	p.runOnce.Do(func() { started = true })
	if !started {
		return
	}

	p.runCtx = ctx
	defer p.shutdown()

	for {
		select {
		case op := <-p.ops:
			op()
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		}
	}
}

// Close stops the loop; completions arriving afterwards are ignored
func (p *Presenter) Close() {
	p.closeOnce.Do(func() { close(p.quit) })
}

// Done is closed once the loop has exited
func (p *Presenter) Done() <-chan struct{} {
	return p.done
}

func (p *Presenter) shutdown() {
	if p.inflight != nil {
		p.inflight.cancel()
		p.inflight = nil
	}

	p.subMu.Lock()
	p.closed = true
	for id, ch := range p.subs {
		close(ch)
		delete(p.subs, id)
	}
	p.subMu.Unlock()

	close(p.done)
}

// Submit starts a lookup for city. Blank input is ignored and leaves the
// state untouched. On return the loading state has been published.
// Run must already be running; otherwise Submit blocks until Close.
func (p *Presenter) Submit(city string) bool {
	city = strings.TrimSpace(city)
	if city == "" {
		return false
	}

	applied := make(chan struct{})
	if !p.post(func() {
		p.start(city)
		close(applied)
	}) {
		return false
	}

	select {
	case <-applied:
		return true
	case <-p.done:
		return false
	}
}

// State returns the latest published state
func (p *Presenter) State() model.State {
	return *p.current.Load()
}

// Subscribe returns a channel that receives the current state and then
// every change. A slow reader skips intermediate states but always ends
// on the latest one. The channel is closed by cancel or when the loop exits.
func (p *Presenter) Subscribe() (<-chan model.State, func()) {
	ch := make(chan model.State, 1)

	p.subMu.Lock()
	if p.closed {
		p.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	ch <- p.State()
	p.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.subMu.Lock()
			defer p.subMu.Unlock()
			if sub, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Counters returns lookup totals
func (p *Presenter) Counters() Counters {
	return Counters{
		Submitted: p.submitted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Stale:     p.stale.Load(),
	}
}

func (p *Presenter) post(op func()) bool {
	select {
	case p.ops <- op:
		return true
	case <-p.done:
		return false
	case <-p.quit:
		return false
	}
}

func (p *Presenter) start(city string) {
	if p.inflight != nil {
		p.inflight.cancel()
	}

	p.generation++
	ctx, cancel := context.WithCancel(p.runCtx)
	req := &request{
		id:         uuid.NewString(),
		city:       city,
		generation: p.generation,
		cancel:     cancel,
	}
	p.inflight = req
	p.submitted.Add(1)

	p.logger.Info("Weather lookup started",
		zap.String("request_id", req.id),
		zap.Uint64("generation", req.generation),
		zap.String("city", city),
	)
	p.publish(model.LoadingState(city, req.generation))

	// done may be invoked synchronously from inside FetchAsync, while the
	// loop is still busy with this op
	p.fetcher.FetchAsync(ctx, city, func(record model.WeatherRecord, err error) {
		go p.post(func() { p.complete(req, record, err) })
	})
}

func (p *Presenter) complete(req *request, record model.WeatherRecord, err error) {
	if p.inflight != req {
		p.stale.Add(1)
		p.logger.Debug("Dropping stale weather result",
			zap.String("request_id", req.id),
			zap.Uint64("generation", req.generation),
			zap.Uint64("current_generation", p.generation),
		)
		return
	}
	req.cancel()
	p.inflight = nil

	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("Weather lookup failed",
			zap.String("request_id", req.id),
			zap.Uint64("generation", req.generation),
			zap.String("city", req.city),
			zap.String("kind", kindName(err)),
			zap.Error(err),
		)
		p.publish(model.FailureState(req.city, req.generation, Message(err)))
		return
	}

	p.succeeded.Add(1)
	p.logger.Info("Weather lookup succeeded",
		zap.String("request_id", req.id),
		zap.Uint64("generation", req.generation),
		zap.String("location", record.Name),
	)
	p.publish(model.SuccessState(req.city, req.generation, record))
}

// publish runs on the loop goroutine only
func (p *Presenter) publish(s model.State) {
	p.current.Store(&s)

	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
