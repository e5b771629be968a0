// Package engine wires intent analysis, context building, prompt assembly,
// generation, and action detection into the per-request chat pipeline.
// The engine is stateless per request aside from reads against the shared
// document store and a small TTL cache; writes to the store happen out of
// band via the sync process.
package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/shopsense-go/internal/actions"
	"github.com/54b3r/shopsense-go/internal/budget"
	"github.com/54b3r/shopsense-go/internal/cache"
	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/contextbuild"
	"github.com/54b3r/shopsense-go/internal/intent"
	"github.com/54b3r/shopsense-go/internal/logging"
	"github.com/54b3r/shopsense-go/internal/prompt"
	"github.com/54b3r/shopsense-go/internal/provider"
	"github.com/54b3r/shopsense-go/internal/rag"
	"github.com/54b3r/shopsense-go/internal/store"
)

// Defaults for tunables left zero in Config.
const (
	defaultCatalogLimit    = 500
	defaultKnowledgeTopK   = 5
	defaultDiscountTopK    = 5
	defaultHistoryDepth    = 10
	defaultMaxContextChars = 12000
	defaultCacheTTL        = 5 * time.Minute
	defaultCacheCapacity   = 256
)

// catalogCacheKey caches the parsed full product catalog between requests.
const catalogCacheKey = "catalog:products"

// Config holds the collaborators and tunables for constructing an Engine.
type Config struct {
	// Store is the document store backing all retrieval. Required.
	Store rag.Store

	// Generator is the LLM backend. Required.
	Generator provider.Generator

	// History is the optional conversation store used to persist and replay
	// prior turns. If nil, each request is stateless.
	History store.ConversationStore

	// LiveCart optionally fetches the cart from the commerce backend when the
	// synced snapshot is missing. May be nil.
	LiveCart contextbuild.LiveCartFetcher

	// PromptTemplate overrides the default instruction template when non-empty.
	PromptTemplate string

	// CatalogLimit caps how many products are read from the store per catalog
	// refresh. Defaults to 500.
	CatalogLimit int
	// KnowledgeTopK is the number of knowledge documents injected per query.
	// Defaults to 5.
	KnowledgeTopK int
	// DiscountTopK is the number of discount candidates considered per query.
	// Defaults to 5.
	DiscountTopK int
	// HistoryDepth is the number of prior turns (user+assistant pairs) to
	// inject per request. Defaults to 10.
	HistoryDepth int
	// MaxContextChars is the character budget for the composed context.
	// Defaults to 12000.
	MaxContextChars int
	// MaxContextTokens is the estimated token budget used when trimming
	// history. Defaults to budget.DefaultMaxContextTokens.
	MaxContextTokens int
	// CacheTTL and CacheCapacity tune the per-process query-result cache.
	CacheTTL      time.Duration
	CacheCapacity int
}

// Request is one incoming chat message with its resolved identity.
type Request struct {
	// UserID is the resolved identity of the requester. Empty means an
	// anonymous session: no user, order, or cart context is built.
	UserID string
	// SessionID groups messages into one conversation thread.
	SessionID string
	// Message is the raw user query.
	Message string
}

// ProductCard is a compact product reference the UI can render as a card.
type ProductCard struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// Response is the engine's answer to one chat request.
type Response struct {
	// Reply is the generated answer text.
	Reply string `json:"reply"`
	// Actions are structured UI action hints detected from the exchange.
	Actions []actions.Action `json:"actions,omitempty"`
	// Cards are the products bound by add-to-cart actions, for card rendering.
	Cards []ProductCard `json:"cards,omitempty"`
}

// Engine runs the full chat pipeline for one request at a time. It is safe
// for concurrent use; all mutable state lives in the shared cache.
type Engine struct {
	store     rag.Store
	gen       provider.Generator
	history   store.ConversationStore
	products  *contextbuild.ProductBuilder
	users     *contextbuild.UserBuilder
	discounts *contextbuild.DiscountBuilder
	carts     *contextbuild.CartBuilder
	assembler *prompt.Assembler
	detector  *actions.Detector
	cache     *cache.Cache

	catalogLimit     int
	knowledgeTopK    int
	discountTopK     int
	historyDepth     int
	maxContextChars  int
	maxContextTokens int

	// now is the clock used for discount eligibility; overridable in tests.
	now func() time.Time
}

// New constructs an Engine from the provided Config.
func New(cfg *Config) (*Engine, error) {
	if cfg.Store == nil || cfg.Generator == nil {
		return nil, ErrNotConfigured
	}

	catalogLimit := cfg.CatalogLimit
	if catalogLimit <= 0 {
		catalogLimit = defaultCatalogLimit
	}
	knowledgeTopK := cfg.KnowledgeTopK
	if knowledgeTopK <= 0 {
		knowledgeTopK = defaultKnowledgeTopK
	}
	discountTopK := cfg.DiscountTopK
	if discountTopK <= 0 {
		discountTopK = defaultDiscountTopK
	}
	depth := cfg.HistoryDepth
	if depth <= 0 {
		depth = defaultHistoryDepth
	}
	maxChars := cfg.MaxContextChars
	if maxChars <= 0 {
		maxChars = defaultMaxContextChars
	}
	maxTokens := cfg.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = budget.DefaultMaxContextTokens
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	capacity := cfg.CacheCapacity
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}

	return &Engine{
		store:            cfg.Store,
		gen:              cfg.Generator,
		history:          cfg.History,
		products:         contextbuild.NewProductBuilder(0),
		users:            contextbuild.NewUserBuilder(cfg.Store),
		discounts:        contextbuild.NewDiscountBuilder(cfg.Store, discountTopK),
		carts:            contextbuild.NewCartBuilder(cfg.Store, cfg.LiveCart),
		assembler:        prompt.NewAssembler(cfg.PromptTemplate),
		detector:         actions.NewDetector(),
		cache:            cache.New(ttl, capacity),
		catalogLimit:     catalogLimit,
		knowledgeTopK:    knowledgeTopK,
		discountTopK:     discountTopK,
		historyDepth:     depth,
		maxContextChars:  maxChars,
		maxContextTokens: maxTokens,
		now:              time.Now,
	}, nil
}

// Chat runs the full pipeline for one request: intent analysis, retrieval,
// context composition, generation with one grounding retry, and action
// detection. Retrieval failures degrade to empty context; generation failures
// propagate as *GenerationError.
func (e *Engine) Chat(ctx context.Context, req Request) (Response, error) {
	log := logging.FromContext(ctx)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, fmt.Errorf("engine: empty message")
	}

	settings := e.loadSettings(ctx)
	it := intent.Analyze(message)
	allProducts := e.catalogProducts(ctx)

	contextText := e.composeContext(ctx, req.UserID, message, it, allProducts)
	historyText := e.historyText(ctx, req, contextText)

	p := e.assembler.Assemble(contextText, historyText, message, settings, false)
	reply, err := e.gen.Generate(ctx, p)
	if err != nil {
		return Response{}, &GenerationError{Err: err}
	}

	// Grounding check: a brand named in the answer but absent from both the
	// context and the query triggers exactly one stricter, cooler retry.
	if bad := ungroundedBrands(reply, contextText, message); len(bad) > 0 {
		log.Warn("engine: response mentions brands outside provided context, regenerating",
			slog.Any("brands", bad),
		)
		strict := settings
		strict.Temperature = settings.Temperature / 2
		retryPrompt := e.assembler.Assemble(contextText, historyText, message, strict, true)
		retry, retryErr := e.gen.Generate(ctx, retryPrompt)
		if retryErr != nil {
			// The first answer already exists; a failed retry keeps it.
			log.Warn("engine: grounding retry failed, keeping first response", slog.Any("error", retryErr))
		} else {
			reply = retry
		}
	}

	eligible := e.eligibleDiscounts(ctx, message)
	acts := e.detector.Detect(message, reply, allProducts, eligible)
	cards := productCards(acts, allProducts)

	e.persistTurn(ctx, req, message, reply)

	return Response{Reply: reply, Actions: acts, Cards: cards}, nil
}

// loadSettings reads the active generation settings record, falling back to
// the defaults when the settings collection is missing or unparsable.
func (e *Engine) loadSettings(ctx context.Context) catalog.ModelSettings {
	log := logging.FromContext(ctx)

	docs, err := e.store.Get(ctx, rag.CollectionSettings, map[string]string{"is_active": "true"}, 1)
	if err != nil {
		log.Warn("engine: settings lookup failed, using defaults", slog.Any("error", err))
		return catalog.DefaultModelSettings()
	}
	if len(docs) == 0 {
		return catalog.DefaultModelSettings()
	}
	settings, err := catalog.ParseModelSettings(docs[0])
	if err != nil {
		log.Warn("engine: settings record unparsable, using defaults", slog.Any("error", err))
		return catalog.DefaultModelSettings()
	}
	return settings
}

// catalogProducts returns the full parsed product catalog, served from the
// TTL cache when fresh. A failed read degrades to an empty catalog.
func (e *Engine) catalogProducts(ctx context.Context) []catalog.Product {
	if v, ok := e.cache.Get(catalogCacheKey); ok {
		if products, ok := v.([]catalog.Product); ok {
			return products
		}
	}

	log := logging.FromContext(ctx)
	docs, err := e.store.Get(ctx, rag.CollectionProducts, nil, e.catalogLimit)
	if err != nil {
		log.Warn("engine: product catalog read failed", slog.Any("error", err))
		return nil
	}

	products := make([]catalog.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := catalog.ParseProduct(doc)
		if err != nil {
			log.Warn("engine: skipping unparsable product", slog.String("id", doc.ID), slog.Any("error", err))
			continue
		}
		products = append(products, p)
	}

	e.cache.Set(catalogCacheKey, products)
	return products
}

// composeContext builds every context block and merges them under the global
// character budget. Each block degrades independently: one failed collection
// must not abort the others.
func (e *Engine) composeContext(ctx context.Context, userID, message string, it intent.Intent, allProducts []catalog.Product) string {
	blocks := []contextbuild.ContextBlock{
		{Name: "discounts", Priority: contextbuild.PriorityPinned, Text: e.discounts.Build(ctx, message)},
	}
	if userID != "" {
		blocks = append(blocks,
			contextbuild.ContextBlock{Name: "user", Priority: contextbuild.PriorityPinned, Text: e.users.Build(ctx, userID)},
			contextbuild.ContextBlock{Name: "cart", Priority: contextbuild.PriorityPinned, Text: e.carts.Build(ctx, userID)},
		)
	}
	blocks = append(blocks,
		contextbuild.ContextBlock{Name: "knowledge", Priority: contextbuild.PriorityKnowledge, Text: e.knowledgeBlock(ctx, message)},
		contextbuild.ContextBlock{Name: "products", Priority: contextbuild.PriorityProduct, Text: e.products.Build(it, allProducts)},
	)
	return contextbuild.Compose(blocks, e.maxContextChars)
}

// knowledgeBlock retrieves policy/FAQ content semantically relevant to the
// query. Results are cached per query text.
func (e *Engine) knowledgeBlock(ctx context.Context, message string) string {
	key := fmt.Sprintf("knowledge:%d:%x", e.knowledgeTopK, hashQuery(message))
	if v, ok := e.cache.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	docs, err := e.store.Query(ctx, rag.CollectionKnowledge, message, e.knowledgeTopK)
	if err != nil {
		logging.FromContext(ctx).Warn("engine: knowledge retrieval failed", slog.Any("error", err))
		return ""
	}
	if len(docs) == 0 {
		e.cache.Set(key, "")
		return ""
	}

	var sb strings.Builder
	sb.WriteString("THÔNG TIN CỬA HÀNG VÀ CHÍNH SÁCH:\n")
	for _, doc := range docs {
		sb.WriteString("- ")
		sb.WriteString(strings.TrimSpace(doc.Content))
		sb.WriteString("\n")
	}
	block := strings.TrimRight(sb.String(), "\n")
	e.cache.Set(key, block)
	return block
}

// eligibleDiscounts returns the discount candidates for action detection,
// hard-filtered to currently redeemable codes.
func (e *Engine) eligibleDiscounts(ctx context.Context, message string) []catalog.Discount {
	docs, err := e.store.Query(ctx, rag.CollectionDiscounts, message, e.discountTopK)
	if err != nil {
		logging.FromContext(ctx).Warn("engine: discount retrieval failed", slog.Any("error", err))
		return nil
	}

	now := e.now()
	var out []catalog.Discount
	for _, doc := range docs {
		d, err := catalog.ParseDiscount(doc)
		if err != nil {
			continue
		}
		if d.Eligible(now) {
			out = append(out, d)
		}
	}
	return out
}

// historyText loads, trims, and renders the prior conversation turns for
// interpolation into the prompt template. Returns "" when no history store
// is configured or the thread is new.
func (e *Engine) historyText(ctx context.Context, req Request, contextText string) string {
	if e.history == nil {
		return ""
	}

	prior, err := e.history.Recent(ctx, req.UserID, req.SessionID, e.historyDepth*2)
	if err != nil {
		logging.FromContext(ctx).Warn("engine: history load failed", slog.Any("error", err))
		return ""
	}
	if len(prior) == 0 {
		return ""
	}

	msgs := make([]*schema.Message, 0, len(prior))
	for _, m := range prior {
		switch m.Role {
		case store.RoleUser:
			msgs = append(msgs, schema.UserMessage(m.Content))
		case store.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		}
	}

	// The composed context and current message are fixed; history gives way.
	fixed := []*schema.Message{
		schema.SystemMessage(contextText),
		schema.UserMessage(req.Message),
	}
	before := len(msgs)
	msgs = budget.TrimHistory(fixed, msgs, e.maxContextTokens)
	if dropped := before - len(msgs); dropped > 0 {
		logging.FromContext(ctx).Debug("engine: dropped history messages to fit context budget",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(msgs)),
		)
	}

	var sb strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case schema.User:
			sb.WriteString("Khách: ")
		case schema.Assistant:
			sb.WriteString("Trợ lý: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// persistTurn appends the exchange to the conversation store. Failures are
// logged, never fatal — losing one history turn must not fail the request.
func (e *Engine) persistTurn(ctx context.Context, req Request, message, reply string) {
	if e.history == nil {
		return
	}
	log := logging.FromContext(ctx)
	if err := e.history.Append(ctx, req.UserID, req.SessionID, store.RoleUser, message); err != nil {
		log.Warn("engine: failed to persist user message", slog.Any("error", err))
	}
	if err := e.history.Append(ctx, req.UserID, req.SessionID, store.RoleAssistant, reply); err != nil {
		log.Warn("engine: failed to persist assistant message", slog.Any("error", err))
	}
}

// productCards resolves add-to-cart actions back to their products for UI
// card rendering, preserving action order.
func productCards(acts []actions.Action, products []catalog.Product) []ProductCard {
	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var cards []ProductCard
	for _, a := range acts {
		if a.Type != actions.AddToCart {
			continue
		}
		p, ok := byID[a.ProductID]
		if !ok {
			continue
		}
		cards = append(cards, ProductCard{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL})
	}
	return cards
}

// hashQuery returns a stable 64-bit hash of the query text for cache keying.
func hashQuery(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
