package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptoStats/internal/coins"
	"cryptoStats/internal/model"
)

// ErrUnknownCoin is returned when selecting a coin outside the static list.
var ErrUnknownCoin = errors.New("unknown coin")

const recordTimeout = 5 * time.Second

// StatsFetcher is the subset of the stats API the dashboard needs.
type StatsFetcher interface {
	GetStats(ctx context.Context, coin string) (model.Stats, error)
	GetDeviation(ctx context.Context, coin string) (model.DeviationResponse, error)
}

// Recorder receives every completed cycle that was not superseded.
type Recorder interface {
	PutCycle(ctx context.Context, record model.CycleRecord) error
}

// Config holds dashboard settings.
type Config struct {
	InitialCoin string
}

// Dashboard owns the selected coin and the last fetched stats and deviation.
// Each fetch cycle is tagged with a generation; starting a cycle cancels the
// previous one and results of superseded cycles are dropped.
type Dashboard struct {
	api      StatsFetcher
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	baseCtx    context.Context
	coin       model.Coin
	stats      *model.Stats
	deviation  decimal.NullDecimal
	loading    bool
	errMsg     string
	errKind    ErrorKind
	generation uint64
	cancel     context.CancelFunc
	updatedAt  time.Time
	closed     bool

	subs    map[int]chan State
	nextSub int

	wg sync.WaitGroup
}

// New builds a Dashboard. recorder may be nil.
func New(cfg Config, api StatsFetcher, recorder Recorder, logger *zap.Logger) (*Dashboard, error) {
	if api == nil {
		return nil, fmt.Errorf("stats fetcher is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	coin := coins.Default()
	if cfg.InitialCoin != "" {
		var ok bool
		coin, ok = coins.Lookup(cfg.InitialCoin)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCoin, cfg.InitialCoin)
		}
	}

	return &Dashboard{
		api:      api,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		baseCtx:  context.Background(),
		coin:     coin,
		subs:     make(map[int]chan State),
	}, nil
}

// Start runs the first cycle. Cycles started later derive from ctx.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	d.baseCtx = ctx
	d.mu.Unlock()
	d.begin()
}

// SelectCoin makes id the active coin and starts a cycle for it.
func (d *Dashboard) SelectCoin(id string) error {
	coin, ok := coins.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCoin, id)
	}

	d.mu.Lock()
	d.coin = coin
	d.mu.Unlock()

	d.logger.Info("coin selected", zap.String("coin", coin.ID))
	d.begin()
	return nil
}

// Refresh starts a new cycle for the current coin. It is not blocked by a
// cycle already in flight; the older one is superseded.
func (d *Dashboard) Refresh() {
	d.begin()
}

// Wait blocks until every started cycle has returned.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Close cancels the cycle in flight, waits for it and closes subscriptions.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.generation++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	for id, ch := range d.subs {
		close(ch)
		delete(d.subs, id)
	}
	d.mu.Unlock()
}

// State returns the current snapshot.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Slow readers only see the latest snapshot.
func (d *Dashboard) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch
	d.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			if _, ok := d.subs[id]; ok {
				delete(d.subs, id)
				close(ch)
			}
			d.mu.Unlock()
		})
	}
}

func (d *Dashboard) begin() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.generation++
	gen := d.generation
	coin := d.coin
	ctx, cancel := context.WithCancel(d.baseCtx)
	d.cancel = cancel
	d.loading = true
	d.errMsg = ""
	d.errKind = ErrorNone
	d.publishLocked()
	d.wg.Add(1)
	d.mu.Unlock()

	d.logger.Debug("cycle start", zap.String("coin", coin.ID), zap.Uint64("generation", gen))
	go d.run(ctx, gen, coin)
}

func (d *Dashboard) run(ctx context.Context, gen uint64, coin model.Coin) {
	defer d.wg.Done()

	startedAt := d.now()
	stats, deviation, err := d.fetchCycle(ctx, coin.ID)
	finishedAt := d.now()

	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		d.logger.Debug("discard superseded cycle", zap.String("coin", coin.ID), zap.Uint64("generation", gen))
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.loading = false
	d.updatedAt = finishedAt
	if err != nil {
		d.errMsg = err.Error()
		d.errKind = errorKindOf(err)
	} else {
		d.stats = &stats
		d.deviation = deviation.Deviation
	}
	kind := d.errKind
	baseCtx := d.baseCtx
	d.publishLocked()
	d.mu.Unlock()

	record := model.CycleRecord{
		Coin:       coin.ID,
		Generation: gen,
		StartedAt:  startedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt: finishedAt.UTC().Format(time.RFC3339Nano),
		Outcome:    model.OutcomeOK,
	}
	if err != nil {
		d.logger.Warn("error fetching data", zap.String("coin", coin.ID), zap.String("kind", string(kind)), zap.Error(err))
		record.Outcome = model.OutcomeError
		record.ErrorKind = string(kind)
		record.Error = err.Error()
	} else {
		d.logger.Info("cycle complete",
			zap.String("coin", coin.ID),
			zap.Uint64("generation", gen),
			zap.Duration("elapsed", finishedAt.Sub(startedAt)),
		)
		record.Stats = &stats
		record.Deviation = deviation.Deviation
	}

	d.record(baseCtx, record)
}

// fetchCycle issues the stats request and, only if it succeeds, the
// deviation request.
func (d *Dashboard) fetchCycle(ctx context.Context, coinID string) (model.Stats, model.DeviationResponse, error) {
	stats, err := d.api.GetStats(ctx, coinID)
	if err != nil {
		return model.Stats{}, model.DeviationResponse{}, err
	}

	deviation, err := d.api.GetDeviation(ctx, coinID)
	if err != nil {
		return model.Stats{}, model.DeviationResponse{}, err
	}

	return stats, deviation, nil
}

func (d *Dashboard) record(ctx context.Context, record model.CycleRecord) {
	if d.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := d.recorder.PutCycle(ctx, record); err != nil {
		d.logger.Warn("record cycle failed", zap.String("coin", record.Coin), zap.Error(err))
	}
}

func (d *Dashboard) snapshotLocked() State {
	state := State{
		Coin:       d.coin,
		Deviation:  d.deviation,
		Loading:    d.loading,
		Error:      d.errMsg,
		ErrorKind:  d.errKind,
		Generation: d.generation,
		UpdatedAt:  d.updatedAt,
	}
	if d.stats != nil {
		stats := *d.stats
		state.Stats = &stats
	}
	return state
}

func (d *Dashboard) publishLocked() {
	if len(d.subs) == 0 {
		return
	}
	state := d.snapshotLocked()
	for _, ch := range d.subs {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
