package advisor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fashionbot/internal/domain"
	"fashionbot/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 5
	defaultCallTimeout = 30 * time.Second
)

// Pipeline is the per-message engine: command or advice branch, model
// call, parse, image enrichment, ordered dispatch. Every message builds
// entirely fresh data, so concurrent messages share no state.
type Pipeline struct {
	generator   domain.Generator
	searcher    domain.ImageSearcher
	messenger   domain.Messenger
	templates   Templates
	bus         domain.MessageBus
	logger      *slog.Logger
	concurrency int
	callTimeout time.Duration
}

// PipelineConfig holds all dependencies and tuning parameters.
type PipelineConfig struct {
	Generator   domain.Generator
	Searcher    domain.ImageSearcher
	Messenger   domain.Messenger
	Templates   Templates
	Bus         domain.MessageBus
	Logger      *slog.Logger
	Concurrency int           // max parallel messages (default 5)
	CallTimeout time.Duration // per external call (default 30s)
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		generator:   cfg.Generator,
		searcher:    cfg.Searcher,
		messenger:   cfg.Messenger,
		templates:   cfg.Templates,
		bus:         cfg.Bus,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		callTimeout: cfg.CallTimeout,
	}
}

// Run consumes inbound messages from the bus with bounded concurrency
// until the context is cancelled or the bus is closed. Messages already
// taken off the bus finish dispatching before Run returns.
func (p *Pipeline) Run(ctx context.Context) {
	p.logger.Info("advice pipeline started", "concurrency", p.concurrency)

	sem := make(chan struct{}, p.concurrency)
	inbound := p.bus.Subscribe()

	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("advice pipeline stopping")
			return
		case msg, ok := <-inbound:
			if !ok {
				p.logger.Info("inbound channel closed, advice pipeline stopping")
				return
			}
			sem <- struct{}{}
			inFlight.Add(1)
			go func(m domain.InboundMessage) {
				defer inFlight.Done()
				defer func() { <-sem }()
				metrics.InFlight.Inc()
				defer metrics.InFlight.Dec()
				p.Handle(ctx, m)
			}(msg)
		}
	}
}

// Handle processes one inbound message to completion. Nothing here is
// fatal: every external failure is logged and scoped to this message.
func (p *Pipeline) Handle(ctx context.Context, msg domain.InboundMessage) {
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	metrics.MessagesTotal.Inc()
	log := p.logger.With("request_id", uuid.NewString(), "chat_id", msg.ChatID)

	if cmd := ParseCommand(msg.Text); cmd != nil {
		p.handleCommand(ctx, msg.ChatID, cmd, log)
		return
	}

	p.advise(ctx, msg, log)
}

// handleCommand never touches the model or the image search. A
// recognized command gets its canned reply; anything else is dropped.
func (p *Pipeline) handleCommand(ctx context.Context, chatID int64, cmd *Command, log *slog.Logger) {
	metrics.CommandsTotal.Inc()

	reply, ok := p.commandReply(cmd)
	if !ok {
		log.Info("unrecognized command, no reply", "command", cmd.Name)
		return
	}

	log.Info("command handled", "command", cmd.Name)
	p.deliverText(ctx, chatID, reply, log)
}

// advise runs the full recommendation pipeline for a free-form query.
func (p *Pipeline) advise(ctx context.Context, msg domain.InboundMessage, log *slog.Logger) {
	log.Info("advice requested", "text_len", len(msg.Text))

	text, err := p.generate(ctx, msg.Text)
	if err != nil {
		// A model failure is soft for the process but visible to the
		// user: they get the apology instead of silence.
		log.Error("model call failed", "err", err)
		p.deliverText(ctx, msg.ChatID, p.templates.Apology, log)
		return
	}

	recs := Parse(text)
	if recs.Empty() {
		log.Warn("no items extracted from model response", "response_len", len(text))
		return
	}
	log.Info("recommendations parsed", "makeup", len(recs.Makeup), "outfit", len(recs.Outfit))

	makeupImages, outfitImages := p.resolveImages(ctx, recs)
	plan := BuildPlan(msg.ChatID, recs, makeupImages, outfitImages)

	p.dispatch(ctx, plan, log)
}

func (p *Pipeline) generate(ctx context.Context, query string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	metrics.ModelRequests.Inc()
	start := time.Now()
	text, err := p.generator.Generate(genCtx, p.templates.AdvicePrompt(query))
	metrics.ModelLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelFailures.Inc()
		return "", err
	}
	return text, nil
}

// resolveImages looks up both categories. The categories are
// independent and run concurrently; within each category the searcher
// resolves strictly sequentially, and each returned slice keeps its
// category's input order, so the final plan ordering is positional and
// never depends on completion order.
func (p *Pipeline) resolveImages(ctx context.Context, recs domain.Recommendations) (makeup, outfit []domain.ImageResult) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		makeup = p.searcher.Resolve(gctx, itemNames(recs.Makeup))
		return nil
	})
	g.Go(func() error {
		outfit = p.searcher.Resolve(gctx, itemNames(recs.Outfit))
		return nil
	})
	_ = g.Wait()
	return makeup, outfit
}

func itemNames(items []domain.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// Enrich joins items with their image results by query, in item order.
// Correlation is by the Query field, never by slice position: lookups
// that failed simply leave ImageURL empty.
func Enrich(items []domain.Item, images []domain.ImageResult) []domain.EnrichedItem {
	byQuery := make(map[string]string, len(images))
	for _, img := range images {
		if _, ok := byQuery[img.Query]; !ok {
			byQuery[img.Query] = img.URL
		}
	}

	enriched := make([]domain.EnrichedItem, 0, len(items))
	for _, item := range items {
		enriched = append(enriched, domain.EnrichedItem{
			Item:     item,
			ImageURL: byQuery[item.Name],
		})
	}
	return enriched
}

// BuildPlan assembles the ordered delivery plan: all makeup items first,
// then all outfit items, each category in its original numeric order.
// An item without a resolved image still gets an entry; the messenger
// decides how to deliver it.
func BuildPlan(chatID int64, recs domain.Recommendations, makeupImages, outfitImages []domain.ImageResult) domain.Plan {
	plan := make(domain.Plan, 0, len(recs.Makeup)+len(recs.Outfit))
	for _, e := range Enrich(recs.Makeup, makeupImages) {
		plan = append(plan, domain.Delivery{ChatID: chatID, Caption: e.Caption(), ImageURL: e.ImageURL})
	}
	for _, e := range Enrich(recs.Outfit, outfitImages) {
		plan = append(plan, domain.Delivery{ChatID: chatID, Caption: e.Caption(), ImageURL: e.ImageURL})
	}
	return plan
}

// dispatch sends the plan strictly in order, awaiting each send so the
// user sees makeup before outfit and items in their numbered order. A
// failed entry is logged and skipped; the rest still go out.
func (p *Pipeline) dispatch(ctx context.Context, plan domain.Plan, log *slog.Logger) {
	for i, d := range plan {
		sendCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		var err error
		if d.ImageURL != "" {
			err = p.messenger.SendPhoto(sendCtx, d.ChatID, d.ImageURL, d.Caption)
		} else {
			err = p.messenger.SendText(sendCtx, d.ChatID, d.Caption)
		}
		cancel()

		if err != nil {
			metrics.DeliveryFailures.Inc()
			log.Error("delivery failed", "entry", i, "caption", d.Caption, "err", err)
			continue
		}
		metrics.DeliveriesTotal.Inc()
	}
	log.Info("delivery plan dispatched", "entries", len(plan))
}

func (p *Pipeline) deliverText(ctx context.Context, chatID int64, text string, log *slog.Logger) {
	sendCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	if err := p.messenger.SendText(sendCtx, chatID, text); err != nil {
		metrics.DeliveryFailures.Inc()
		log.Error("text delivery failed", "err", err)
		return
	}
	metrics.DeliveriesTotal.Inc()
}
