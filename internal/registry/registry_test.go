package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vitalscope/vitalscope/pkg/plugin"
	"go.uber.org/zap"
)

// testPlugin is a minimal plugin for testing.
type testPlugin struct {
	info    plugin.PluginInfo
	initErr error
}

func newTestPlugin(name string, deps ...string) *testPlugin {
	return &testPlugin{
		info: plugin.PluginInfo{
			Name:         name,
			Version:      "1.0.0",
			Description:  "test plugin " + name,
			Dependencies: deps,
			APIVersion:   plugin.APIVersionCurrent,
		},
	}
}

func (p *testPlugin) Info() plugin.PluginInfo                             { return p.info }
func (p *testPlugin) Init(_ context.Context, _ plugin.Dependencies) error { return p.initErr }
func (p *testPlugin) Start(_ context.Context) error                       { return nil }
func (p *testPlugin) Stop(_ context.Context) error                        { return nil }

// shutdownPlugin tracks stop order and simulates configurable stop behavior.
type shutdownPlugin struct {
	info         plugin.PluginInfo
	stopDuration time.Duration
	stopErr      error
	stopOrder    *[]string
	stopCount    *int32
}

func newShutdownPlugin(name string, stopOrder *[]string, deps ...string) *shutdownPlugin {
	return &shutdownPlugin{
		info: plugin.PluginInfo{
			Name:         name,
			Version:      "1.0.0",
			Description:  "shutdown test plugin " + name,
			Dependencies: deps,
			APIVersion:   plugin.APIVersionCurrent,
		},
		stopOrder: stopOrder,
	}
}

func (p *shutdownPlugin) Info() plugin.PluginInfo                             { return p.info }
func (p *shutdownPlugin) Init(_ context.Context, _ plugin.Dependencies) error { return nil }
func (p *shutdownPlugin) Start(_ context.Context) error                       { return nil }

func (p *shutdownPlugin) Stop(ctx context.Context) error {
	if p.stopCount != nil {
		atomic.AddInt32(p.stopCount, 1)
	}

	if p.stopDuration > 0 {
		select {
		case <-time.After(p.stopDuration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if p.stopOrder != nil {
		*p.stopOrder = append(*p.stopOrder, p.info.Name)
	}

	return p.stopErr
}

// testHTTPPlugin implements both Plugin and HTTPProvider.
type testHTTPPlugin struct {
	testPlugin
	routes []plugin.Route
}

func (p *testHTTPPlugin) Routes() []plugin.Route { return p.routes }

// testEventSubPlugin implements both Plugin and EventSubscriber.
type testEventSubPlugin struct {
	testPlugin
	subscriptions []plugin.Subscription
}

func (p *testEventSubPlugin) Subscriptions() []plugin.Subscription { return p.subscriptions }

// testBus records Subscribe calls for verification.
type testBus struct {
	topics []string
}

func (b *testBus) Subscribe(topic string, _ plugin.EventHandler) (unsubscribe func()) {
	b.topics = append(b.topics, topic)
	return func() {}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testDeps() func(string) plugin.Dependencies {
	return func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Logger: testLogger().Named(name),
		}
	}
}

func TestRegister(t *testing.T) {
	reg := New(testLogger())

	p := newTestPlugin("alpha")
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Duplicate registration should fail.
	if err := reg.Register(p); err == nil {
		t.Fatal("Register() expected error for duplicate, got nil")
	}
}

func TestRegisterEmptyName(t *testing.T) {
	reg := New(testLogger())
	p := &testPlugin{info: plugin.PluginInfo{Name: ""}}
	if err := reg.Register(p); err == nil {
		t.Fatal("Register() expected error for empty name, got nil")
	}
}

func TestValidateNoDeps(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("a"))
	reg.Register(newTestPlugin("b"))

	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d plugins, want 2", len(all))
	}
}

func TestValidateWithDeps(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("notify", "analyzer"))
	reg.Register(newTestPlugin("analyzer"))

	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// analyzer should come before notify in order.
	all := reg.All()
	aIdx, nIdx := -1, -1
	for i, p := range all {
		switch p.Info().Name {
		case "analyzer":
			aIdx = i
		case "notify":
			nIdx = i
		}
	}
	if aIdx >= nIdx {
		t.Errorf("expected analyzer (idx %d) before notify (idx %d)", aIdx, nIdx)
	}
}

func TestValidateCycleDetection(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("a", "b"))
	reg.Register(newTestPlugin("b", "a"))

	if err := reg.Validate(); err == nil {
		t.Fatal("Validate() expected cycle error, got nil")
	}
}

func TestValidateMissingRequiredDep(t *testing.T) {
	reg := New(testLogger())
	p := newTestPlugin("a", "missing")
	p.info.Required = true
	reg.Register(p)

	if err := reg.Validate(); err == nil {
		t.Fatal("Validate() expected error for missing required dep, got nil")
	}
}

func TestValidateDisablesOptionalWithMissingDep(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("a", "missing")) // optional, dep doesn't exist

	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if !reg.IsDisabled("a") {
		t.Error("expected plugin 'a' to be disabled")
	}
}

func TestAPIVersionTooOld(t *testing.T) {
	reg := New(testLogger())
	p := newTestPlugin("old")
	p.info.APIVersion = 0 // below APIVersionMin
	p.info.Required = true
	reg.Register(p)

	if err := reg.Validate(); err == nil {
		t.Fatal("Validate() expected error for old API version, got nil")
	}
}

func TestAPIVersionTooNew(t *testing.T) {
	reg := New(testLogger())
	p := newTestPlugin("future")
	p.info.APIVersion = 999 // above APIVersionCurrent
	p.info.Required = true
	reg.Register(p)

	if err := reg.Validate(); err == nil {
		t.Fatal("Validate() expected error for future API version, got nil")
	}
}

func TestInitAll(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("a"))
	reg.Register(newTestPlugin("b"))
	reg.Validate()

	ctx := context.Background()
	if err := reg.InitAll(ctx, testDeps()); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
}

func TestInitAllRequiredFails(t *testing.T) {
	reg := New(testLogger())
	p := newTestPlugin("a")
	p.info.Required = true
	p.initErr = errors.New("init failed")
	reg.Register(p)
	reg.Validate()

	ctx := context.Background()
	if err := reg.InitAll(ctx, testDeps()); err == nil {
		t.Fatal("InitAll() expected error for required plugin failure, got nil")
	}
}

func TestInitAllOptionalDisabledOnFailure(t *testing.T) {
	reg := New(testLogger())
	p := newTestPlugin("a")
	p.initErr = errors.New("init failed")
	reg.Register(p)
	reg.Validate()

	ctx := context.Background()
	if err := reg.InitAll(ctx, testDeps()); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if !reg.IsDisabled("a") {
		t.Error("expected optional plugin 'a' to be disabled after init failure")
	}
}

func TestStartAllStopAll(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("a"))
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())

	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}

	reg.StopAll(ctx) // should not panic
}

func TestGet(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestPlugin("a"))
	reg.Validate()

	if _, ok := reg.Get("a"); !ok {
		t.Error("Get('a') returned false, want true")
	}
	if _, ok := reg.Get("nonexistent"); ok {
		t.Error("Get('nonexistent') returned true, want false")
	}
}

func TestAllRoutesHTTPProvider(t *testing.T) {
	reg := New(testLogger())

	hp := &testHTTPPlugin{
		testPlugin: *newTestPlugin("ingest"),
		routes: []plugin.Route{
			{Method: "POST", Path: "/vitals"},
		},
	}
	reg.Register(hp)
	reg.Register(newTestPlugin("noroutes")) // no HTTPProvider

	reg.Validate()
	ctx := context.Background()
	reg.InitAll(ctx, testDeps())

	routes := reg.AllRoutes()
	if len(routes) != 1 {
		t.Fatalf("AllRoutes() returned %d plugin route sets, want 1", len(routes))
	}
	if _, ok := routes["ingest"]; !ok {
		t.Error("AllRoutes() missing 'ingest' routes")
	}
}

func TestResolveByRole(t *testing.T) {
	reg := New(testLogger())

	a := newTestPlugin("analyzer")
	a.info.Roles = []string{"analytics"}
	n := newTestPlugin("notify")
	n.info.Roles = []string{"notification"}

	reg.Register(a)
	reg.Register(n)
	reg.Validate()

	got := reg.ResolveByRole("analytics")
	if len(got) != 1 || got[0].Info().Name != "analyzer" {
		t.Fatalf("ResolveByRole(analytics) = %v, want [analyzer]", got)
	}
	if got := reg.ResolveByRole("none"); len(got) != 0 {
		t.Errorf("ResolveByRole(none) returned %d plugins, want 0", len(got))
	}
}

func TestCascadeDisable(t *testing.T) {
	reg := New(testLogger())

	a := newTestPlugin("a")
	a.info.APIVersion = 0 // will be disabled (too old)

	b := newTestPlugin("b", "a") // depends on a

	reg.Register(a)
	reg.Register(b)

	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if !reg.IsDisabled("a") {
		t.Error("expected 'a' to be disabled (bad API version)")
	}
	if !reg.IsDisabled("b") {
		t.Error("expected 'b' to be cascade disabled")
	}
}

func TestWireSubscriptions(t *testing.T) {
	reg := New(testLogger())

	p := &testEventSubPlugin{
		testPlugin: *newTestPlugin("analyzer"),
		subscriptions: []plugin.Subscription{
			{
				Topic:   "ingest.samples.received",
				Handler: func(_ context.Context, _ plugin.Event) {},
			},
		},
	}
	reg.Register(p)
	reg.Register(newTestPlugin("plain")) // no EventSubscriber
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())

	bus := &testBus{}
	reg.WireSubscriptions(bus)

	if len(bus.topics) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(bus.topics))
	}
	if bus.topics[0] != "ingest.samples.received" {
		t.Errorf("topic = %q, want %q", bus.topics[0], "ingest.samples.received")
	}
}

func TestWireSubscriptions_SkipsDisabled(t *testing.T) {
	reg := New(testLogger())

	p := &testEventSubPlugin{
		testPlugin: *newTestPlugin("broken"),
		subscriptions: []plugin.Subscription{
			{Topic: "ingest.samples.received", Handler: func(_ context.Context, _ plugin.Event) {}},
		},
	}
	p.initErr = errors.New("init failed")
	reg.Register(p)
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())

	bus := &testBus{}
	reg.WireSubscriptions(bus)

	if len(bus.topics) != 0 {
		t.Errorf("expected no subscriptions for disabled plugin, got %d", len(bus.topics))
	}
}

func TestStopAll_ReverseOrder(t *testing.T) {
	var stopOrder []string
	reg := New(testLogger())

	// Start order: a, b, c. Stop order should be reversed.
	a := newShutdownPlugin("a", &stopOrder)
	b := newShutdownPlugin("b", &stopOrder, "a")
	c := newShutdownPlugin("c", &stopOrder, "b")

	reg.Register(a)
	reg.Register(b)
	reg.Register(c)
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())
	reg.StartAll(ctx)

	reg.StopAll(ctx)

	expected := []string{"c", "b", "a"}
	if len(stopOrder) != len(expected) {
		t.Fatalf("stop order length = %d, want %d", len(stopOrder), len(expected))
	}
	for i, name := range expected {
		if stopOrder[i] != name {
			t.Errorf("stop order[%d] = %q, want %q", i, stopOrder[i], name)
		}
	}
}

func TestStopAll_ErrorDoesNotBlockOthers(t *testing.T) {
	var stopOrder []string
	reg := New(testLogger())

	a := newShutdownPlugin("a", &stopOrder)
	b := newShutdownPlugin("b", &stopOrder, "a")
	b.stopErr = errors.New("b failed to stop")
	c := newShutdownPlugin("c", &stopOrder, "b")

	reg.Register(a)
	reg.Register(b)
	reg.Register(c)
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())
	reg.StartAll(ctx)
	reg.StopAll(ctx)

	// All plugins should have had Stop() called despite b's error.
	if len(stopOrder) != 3 {
		t.Fatalf("stopped %d plugins, want 3 (all should stop despite errors)", len(stopOrder))
	}
}

func TestStopAll_ContextTimeout(t *testing.T) {
	var stopOrder []string
	reg := New(testLogger())

	fast := newShutdownPlugin("fast", &stopOrder)
	slow := newShutdownPlugin("slow", &stopOrder)
	slow.stopDuration = 5 * time.Second

	reg.Register(fast)
	reg.Register(slow)
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())
	reg.StartAll(ctx)

	// The slow plugin should respect ctx.Done() rather than run for 5s.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	reg.StopAll(shutdownCtx)
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("StopAll took %v, expected < 500ms with context timeout", elapsed)
	}

	foundFast := false
	for _, name := range stopOrder {
		if name == "fast" {
			foundFast = true
		}
	}
	if !foundFast {
		t.Error("expected 'fast' plugin to complete stop")
	}
}

func TestStopAll_DisabledPluginsSkipped(t *testing.T) {
	var stopCount int32
	reg := New(testLogger())

	active := newShutdownPlugin("active", nil)
	active.stopCount = &stopCount

	disabled := newShutdownPlugin("disabled", nil)
	disabled.stopCount = &stopCount
	disabled.info.APIVersion = 0 // Will be disabled due to old API version

	reg.Register(active)
	reg.Register(disabled)
	reg.Validate()

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())
	reg.StartAll(ctx)
	reg.StopAll(ctx)

	if stopCount != 1 {
		t.Errorf("stop count = %d, want 1 (disabled plugin should be skipped)", stopCount)
	}
}
