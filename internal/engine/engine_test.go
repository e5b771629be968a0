package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/54b3r/shopsense-go/internal/actions"
	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/prompt"
	"github.com/54b3r/shopsense-go/internal/rag"
	"github.com/54b3r/shopsense-go/internal/store"
)

// fakeDocStore is an in-memory rag.Store honoring exact-match filters, with
// per-collection call counters.
type fakeDocStore struct {
	mu       sync.Mutex
	docs     map[string][]rag.Document
	getCalls map[string]int
	failGet  map[string]error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:     make(map[string][]rag.Document),
		getCalls: make(map[string]int),
		failGet:  make(map[string]error),
	}
}

func (s *fakeDocStore) add(collection string, doc rag.Document) {
	s.docs[collection] = append(s.docs[collection], doc)
}

func (s *fakeDocStore) Upsert(_ context.Context, collection string, docs []rag.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[collection] = append(s.docs[collection], docs...)
	return nil
}

func (s *fakeDocStore) Query(_ context.Context, collection, _ string, topK int) ([]rag.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failGet[collection]; err != nil {
		return nil, err
	}
	out := s.docs[collection]
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *fakeDocStore) Get(_ context.Context, collection string, filter map[string]string, limit int) ([]rag.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls[collection]++
	if err := s.failGet[collection]; err != nil {
		return nil, err
	}
	var out []rag.Document
	for _, doc := range s.docs[collection] {
		match := true
		for k, v := range filter {
			if doc.Metadata[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, doc)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeDocStore) GetByID(_ context.Context, collection, id string) (*rag.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs[collection] {
		if doc.ID == id {
			d := doc
			return &d, nil
		}
	}
	return nil, nil
}

// fakeGenerator replays queued replies and records each prompt it saw.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []prompt.Prompt
}

func (g *fakeGenerator) Generate(_ context.Context, p prompt.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	i := len(g.prompts) - 1
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	if len(g.replies) > 0 {
		return g.replies[len(g.replies)-1], nil
	}
	return "", errors.New("no scripted reply")
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// fakeHistory is an in-memory ConversationStore.
type fakeHistory struct {
	mu   sync.Mutex
	msgs []store.Message
}

func (h *fakeHistory) Append(_ context.Context, _, _ string, role store.Role, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, store.Message{Role: role, Content: content, CreatedAt: time.Now()})
	return nil
}

func (h *fakeHistory) Recent(_ context.Context, _, _ string, n int) ([]store.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.msgs) > n {
		return h.msgs[len(h.msgs)-n:], nil
	}
	return h.msgs, nil
}

func (h *fakeHistory) Close() error { return nil }

func productDoc(id, name, price, category, brand, stock string) rag.Document {
	return rag.Document{
		ID:      "product_" + id,
		Content: "Thông số chi tiết " + name,
		Metadata: map[string]string{
			"product_id": id,
			"name":       name,
			"price":      price,
			"category":   category,
			"brand":      brand,
			"stock":      stock,
			"status":     "active",
		},
	}
}

func seedStore() *fakeDocStore {
	s := newFakeDocStore()
	s.add(rag.CollectionProducts, productDoc("1", "Laptop Acer Nitro V", "25000000", "Laptop", "Acer", "12"))
	s.add(rag.CollectionProducts, productDoc("2", "Laptop Dell Inspiron 15", "18000000", "Laptop", "Dell", "7"))
	s.add(rag.CollectionKnowledge, rag.Document{
		ID:       "kb_1",
		Content:  "Bảo hành 12 tháng cho laptop chính hãng.",
		Metadata: map[string]string{},
	})
	return s
}

func newTestEngine(t *testing.T, s *fakeDocStore, g *fakeGenerator, h store.ConversationStore) *Engine {
	t.Helper()
	e, err := New(&Config{Store: s, Generator: g, History: h})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(&Config{Generator: &fakeGenerator{}}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing store err = %v, want ErrNotConfigured", err)
	}
	if _, err := New(&Config{Store: newFakeDocStore()}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing generator err = %v, want ErrNotConfigured", err)
	}
}

func TestChatHappyPath(t *testing.T) {
	t.Parallel()

	s := seedStore()
	g := &fakeGenerator{replies: []string{"Laptop Acer Nitro V đang có giá 25.000.000đ, rất phù hợp với bạn."}}
	e := newTestEngine(t, s, g, nil)

	resp, err := e.Chat(context.Background(), Request{UserID: "7", SessionID: "s1", Message: "tư vấn laptop acer nitro"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Reply == "" {
		t.Fatal("empty reply")
	}

	var added *actions.Action
	for i := range resp.Actions {
		if resp.Actions[i].Type == actions.AddToCart {
			added = &resp.Actions[i]
		}
	}
	if added == nil {
		t.Fatalf("expected an add-to-cart action, got %+v", resp.Actions)
	}
	if added.ProductID != 1 {
		t.Errorf("bound product = %d, want 1", added.ProductID)
	}
	if len(resp.Cards) != 1 || resp.Cards[0].ID != 1 {
		t.Errorf("cards = %+v, want one card for product 1", resp.Cards)
	}
}

func TestChatEmptyMessageRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, seedStore(), &fakeGenerator{replies: []string{"ok"}}, nil)
	if _, err := e.Chat(context.Background(), Request{UserID: "7", Message: "   "}); err == nil {
		t.Error("expected error for blank message")
	}
}

func TestChatGenerationFailureIsTyped(t *testing.T) {
	t.Parallel()

	g := &fakeGenerator{errs: []error{errors.New("upstream 500")}}
	e := newTestEngine(t, seedStore(), g, nil)

	_, err := e.Chat(context.Background(), Request{UserID: "7", Message: "laptop nào tốt"})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
}

func TestChatGroundingRetryOnce(t *testing.T) {
	t.Parallel()

	// First reply drifts to a brand absent from both catalog and query.
	g := &fakeGenerator{replies: []string{
		"Bạn nên cân nhắc iPhone 15 Pro Max.",
		"Shop hiện có Laptop Acer Nitro V phù hợp nhu cầu của bạn.",
	}}
	e := newTestEngine(t, seedStore(), g, nil)

	resp, err := e.Chat(context.Background(), Request{UserID: "7", Message: "tư vấn laptop chơi game"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if g.calls() != 2 {
		t.Fatalf("generator calls = %d, want 2 (exactly one retry)", g.calls())
	}
	if !strings.Contains(resp.Reply, "Acer") {
		t.Errorf("reply = %q, want the retry output", resp.Reply)
	}

	first, second := g.prompts[0], g.prompts[1]
	if second.System == first.System {
		t.Error("retry prompt should carry the stricter instruction")
	}
	if second.Settings.Temperature >= first.Settings.Temperature {
		t.Errorf("retry temperature = %v, want lower than %v", second.Settings.Temperature, first.Settings.Temperature)
	}
}

func TestChatGroundedReplyNotRetried(t *testing.T) {
	t.Parallel()

	g := &fakeGenerator{replies: []string{"Laptop Dell Inspiron 15 giá 18.000.000đ."}}
	e := newTestEngine(t, seedStore(), g, nil)

	if _, err := e.Chat(context.Background(), Request{UserID: "7", Message: "laptop dell giá rẻ"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if g.calls() != 1 {
		t.Errorf("generator calls = %d, want 1", g.calls())
	}
}

func TestChatRetryFailureKeepsFirstReply(t *testing.T) {
	t.Parallel()

	g := &fakeGenerator{
		replies: []string{"Hãy xem Samsung Galaxy S24.", ""},
		errs:    []error{nil, errors.New("rate limited")},
	}
	e := newTestEngine(t, seedStore(), g, nil)

	resp, err := e.Chat(context.Background(), Request{UserID: "7", Message: "tư vấn laptop"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(resp.Reply, "Samsung") {
		t.Errorf("reply = %q, want the surviving first response", resp.Reply)
	}
}

func TestChatCatalogReadIsCached(t *testing.T) {
	t.Parallel()

	s := seedStore()
	g := &fakeGenerator{replies: []string{"Dạ, shop có nhiều lựa chọn laptop ạ."}}
	e := newTestEngine(t, s, g, nil)

	for range 3 {
		if _, err := e.Chat(context.Background(), Request{UserID: "7", Message: "có laptop nào không"}); err != nil {
			t.Fatalf("Chat: %v", err)
		}
	}
	if got := s.getCalls[rag.CollectionProducts]; got != 1 {
		t.Errorf("product catalog reads = %d, want 1 (cache hit afterwards)", got)
	}
}

func TestChatSettingsFallbackToDefaults(t *testing.T) {
	t.Parallel()

	g := &fakeGenerator{replies: []string{"Dạ vâng ạ."}}
	e := newTestEngine(t, seedStore(), g, nil)

	if _, err := e.Chat(context.Background(), Request{UserID: "7", Message: "xin chào shop"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	want := catalog.DefaultModelSettings()
	got := g.prompts[0].Settings
	if got.Model != want.Model || got.MaxTokens != want.MaxTokens {
		t.Errorf("settings = %+v, want defaults %+v", got, want)
	}
}

func TestChatActiveSettingsApplied(t *testing.T) {
	t.Parallel()

	s := seedStore()
	s.add(rag.CollectionSettings, rag.Document{
		ID: "settings_1",
		Metadata: map[string]string{
			"model":       "llama-3.3-70b-versatile",
			"temperature": "0.3",
			"max_tokens":  "512",
			"is_active":   "true",
		},
	})
	g := &fakeGenerator{replies: []string{"Dạ vâng ạ."}}
	e := newTestEngine(t, s, g, nil)

	if _, err := e.Chat(context.Background(), Request{UserID: "7", Message: "xin chào"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got := g.prompts[0].Settings.Model; got != "llama-3.3-70b-versatile" {
		t.Errorf("settings model = %q, want the active record's model", got)
	}
}

func TestChatPersistsAndReplaysHistory(t *testing.T) {
	t.Parallel()

	h := &fakeHistory{}
	g := &fakeGenerator{replies: []string{"Dạ shop có ạ.", "Dạ còn hàng ạ."}}
	e := newTestEngine(t, seedStore(), g, h)

	if _, err := e.Chat(context.Background(), Request{UserID: "7", SessionID: "s1", Message: "shop có laptop dell không"}); err != nil {
		t.Fatalf("Chat 1: %v", err)
	}
	if len(h.msgs) != 2 {
		t.Fatalf("persisted messages = %d, want 2", len(h.msgs))
	}

	if _, err := e.Chat(context.Background(), Request{UserID: "7", SessionID: "s1", Message: "còn hàng chứ"}); err != nil {
		t.Fatalf("Chat 2: %v", err)
	}
	second := g.prompts[1].User
	if !strings.Contains(second, "Khách: shop có laptop dell không") {
		t.Errorf("second prompt missing prior user turn:\n%s", second)
	}
	if !strings.Contains(second, "Trợ lý: Dạ shop có ạ.") {
		t.Errorf("second prompt missing prior assistant turn:\n%s", second)
	}
}

func TestChatRetrievalFailureDegrades(t *testing.T) {
	t.Parallel()

	s := seedStore()
	s.failGet[rag.CollectionKnowledge] = errors.New("collection absent")
	s.failGet[rag.CollectionDiscounts] = errors.New("collection absent")
	g := &fakeGenerator{replies: []string{"Dạ, em tư vấn theo danh mục hiện có ạ."}}
	e := newTestEngine(t, s, g, nil)

	resp, err := e.Chat(context.Background(), Request{UserID: "7", Message: "laptop nào đang bán chạy"})
	if err != nil {
		t.Fatalf("Chat should survive failed collections: %v", err)
	}
	if resp.Reply == "" {
		t.Error("empty reply")
	}
	// Product context still made it through.
	if !strings.Contains(g.prompts[0].User, "Acer") {
		t.Error("product context missing despite unrelated collection failures")
	}
}

func TestChatAnonymousSkipsUserScopedContext(t *testing.T) {
	t.Parallel()

	s := seedStore()
	s.add(rag.CollectionUsers, rag.Document{
		ID:       "user_7",
		Metadata: map[string]string{"user_id": "7", "name": "Nguyễn Văn An"},
	})
	g := &fakeGenerator{replies: []string{"Dạ chào bạn."}}
	e := newTestEngine(t, s, g, nil)

	if _, err := e.Chat(context.Background(), Request{UserID: "", SessionID: "s1", Message: "xin chào"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if strings.Contains(g.prompts[0].User, "Nguyễn Văn An") {
		t.Error("anonymous request must not include any user profile data")
	}
}
