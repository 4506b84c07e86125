package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/crossval"
	"github.com/sells-group/hardware-cli/internal/extract"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/resolver"
	"github.com/sells-group/hardware-cli/internal/scrape"
	"github.com/sells-group/hardware-cli/internal/sourcechain"
	"github.com/sells-group/hardware-cli/internal/store"
	"github.com/sells-group/hardware-cli/pkg/jina"
	"github.com/sells-group/hardware-cli/pkg/jina/mocks"
)

const (
	arkURL = "https://www.intel.com/content/www/us/en/products/sku/134594/intel-core-i712700k-processor-25m-cache-up-to-5-00-ghz/specifications.html"
	tpuURL = "https://www.techpowerup.com/cpu-specs/core-i7-12700k.c2835"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string][]model.SpecField
	errs  map[string]error
	reqs  []extract.Request
}

func (f *fakeFetcher) FetchSpecs(_ context.Context, req extract.Request) ([]model.SpecField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if err := f.errs[req.URL]; err != nil {
		return nil, err
	}
	return f.pages[req.URL], nil
}

func (f *fakeFetcher) requests() []extract.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]extract.Request, len(f.reqs))
	copy(out, f.reqs)
	return out
}

func field(key, value, unit string, tier model.SourceTier) model.SpecField {
	return model.SpecField{
		Key:        key,
		Value:      value,
		Unit:       unit,
		Provenance: model.ProvenanceForTier(tier),
		Confidence: tier.Confidence(),
	}
}

func cpuSpecs(tier model.SourceTier) []model.SpecField {
	return []model.SpecField{
		field("cpu.cores_physical", "12", "", tier),
		field("cpu.threads_logical", "20", "", tier),
		field("cpu.boost_clock_mhz", "5000", "MHz", tier),
	}
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestOrchestrator(t *testing.T, f Fetcher, idx *catalog.Index, opts ...Option) *Orchestrator {
	t.Helper()
	if idx == nil {
		var err error
		idx, err = catalog.Load()
		require.NoError(t, err)
	}
	refs, err := catalog.LoadReferenceTable()
	require.NoError(t, err)
	mgr := sourcechain.NewManager(nil)
	base := []Option{WithReferenceTable(refs), WithClock(func() time.Time { return fixedNow })}
	return New(Config{Retries: 2, Throttle: map[string]time.Duration{"intel.com": time.Second}},
		mgr, resolver.New(idx, mgr), f, append(base, opts...)...)
}

func assertMonotonic(t *testing.T, events []model.Event) {
	t.Helper()
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Progress, events[i-1].Progress, "event %d (%s)", i, events[i].Kind)
	}
}

func kinds(events []model.Event) []model.EventKind {
	out := make([]model.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestProcessInput_ExactPartNumberUsesPrimary(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string][]model.SpecField{arkURL: cpuSpecs(model.TierOfficial)}}
	var observed []model.Event
	o := newTestOrchestrator(t, f, nil, WithSink(func(e model.Event) { observed = append(observed, e) }))

	out := o.ProcessInput(context.Background(), "Intel Core i7-12700K BX8071512700K")

	require.Equal(t, model.OutcomeReady, out.Status, out.Message)
	require.NotNil(t, out.Record)
	rec := out.Record
	assert.Equal(t, model.ComponentCPU, rec.Type)
	assert.Equal(t, "BX8071512700K", rec.Canonical.PartNumber)
	assert.Equal(t, model.TierOfficial, rec.SourceTier)
	assert.InDelta(t, 0.9, rec.SourceConfidence, 1e-9)
	assert.Equal(t, arkURL, rec.SourceURL)
	assert.Equal(t, "intel_ark", rec.SourceName)
	assert.Equal(t, "2026-03-14", rec.DataDate)
	assert.Len(t, rec.Specs, 3)
	assert.True(t, rec.ExactMatch)

	assert.Equal(t, []model.EventKind{
		model.EventNormalizing,
		model.EventClassified,
		model.EventResolved,
		model.EventSourceTrying,
		model.EventSourceSuccess,
		model.EventReady,
	}, kinds(out.Events))
	assertMonotonic(t, out.Events)
	assert.Equal(t, out.Events, observed)

	reqs := f.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "intel_ark_spider", reqs[0].SpiderID)
	assert.Equal(t, 2, reqs[0].Retries)
	assert.Equal(t, time.Second, reqs[0].Throttle["intel.com"])
	assert.False(t, reqs[0].UseBrowser)
	assert.Equal(t, model.ComponentCPU, reqs[0].Type)
}

func TestProcessInput_AntiBotBlocksDomainAndFallsBackToReference(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		pages: map[string][]model.SpecField{tpuURL: cpuSpecs(model.TierReference)},
		errs:  map[string]error{arkURL: &scrape.AntiBotError{URL: arkURL, Engine: "http", Block: scrape.BlockCloudflare}},
	}
	o := newTestOrchestrator(t, f, nil)

	out := o.ProcessInput(context.Background(), "Intel Core i7-12700K BX8071512700K")

	require.Equal(t, model.OutcomeReady, out.Status, out.Message)
	assert.Contains(t, kinds(out.Events), model.EventSourceAntiBot)
	assertMonotonic(t, out.Events)

	rec := out.Record
	assert.Equal(t, model.TierReference, rec.SourceTier)
	assert.Equal(t, tpuURL, rec.SourceURL)
	assert.Equal(t, "techpowerup_cpu", rec.SourceName)
	for _, s := range rec.Specs {
		assert.Equal(t, model.StatusExtractedReference, s.Status())
		assert.Equal(t, tpuURL, s.SourceURL)
	}

	mgr := o.Sources()
	assert.True(t, mgr.IsBlocked(arkURL))
	assert.True(t, mgr.IsBlocked("https://intel.com/anything"))
	ark, _ := mgr.SourceForURL(model.ComponentCPU, arkURL)
	require.NotNil(t, ark)
	assert.Equal(t, model.EnginePlainHTTP, ark.Engine)
	assert.True(t, mgr.ShouldUseBrowserEngine(*ark, arkURL))

	// The next attempt on the blocked domain goes straight to the browser.
	_ = o.ProcessInput(context.Background(), "Intel Core i7-12700K BX8071512700K")
	reqs := f.requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, arkURL, reqs[2].URL)
	assert.True(t, reqs[2].UseBrowser)
	assert.Equal(t, "techpowerup_reference_spider", reqs[1].SpiderID)
}

func TestProcessInput_CatalogSynthesis(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{errs: map[string]error{}}
	o := newTestOrchestrator(t, f, nil)

	out := o.ProcessInput(context.Background(), "Corsair CMK16GX4M2B3200C16")

	require.Equal(t, model.OutcomeReady, out.Status, out.Message)
	rec := out.Record
	assert.Equal(t, model.TierCatalog, rec.SourceTier)
	assert.Equal(t, model.CatalogLastUpdated, rec.DataDate)
	assert.Equal(t, "embedded_ram", rec.SourceName)
	assert.Equal(t, "DDR4", model.SpecValue(rec.Specs, "ram.type"))
	assert.Equal(t, "1.2", model.SpecValue(rec.Specs, "ram.voltage_v"))
	for _, s := range rec.Specs {
		assert.Equal(t, model.StatusCalculated, s.Status())
		assert.Equal(t, model.TierCatalog, s.Tier())
	}
	assertMonotonic(t, out.Events)
}

func TestProcessInput_AllStepsFail(t *testing.T) {
	t.Parallel()

	url := "https://www.crucial.com/memory/generic-value"
	idx := catalog.NewIndex([]catalog.Entry{{
		Type:       model.ComponentRAM,
		Canonical:  model.Canonical{Brand: "Generic", Model: "Memory Module Value"},
		SourceName: "Crucial",
		SourceURL:  url,
		SpiderID:   "crucial_ram_spider",
	}})
	f := &fakeFetcher{errs: map[string]error{url: eris.New("connection reset")}}
	o := newTestOrchestrator(t, f, idx)

	out := o.ProcessInput(context.Background(), "Generic Memory Module Value")

	assert.Equal(t, model.OutcomeError, out.Status)
	assert.Nil(t, out.Record)
	assert.Empty(t, o.Components())
	assert.False(t, o.Sources().IsBlocked(url))
	assertMonotonic(t, out.Events)
	last := out.Events[len(out.Events)-1]
	assert.Equal(t, model.EventError, last.Kind)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, model.OutcomeError, last.Status)
}

func TestProcessInput_NeedsSelectionThenSelect(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	o := newTestOrchestrator(t, f, nil)

	out := o.ProcessInput(context.Background(), "corsair vengeance")
	require.Equal(t, model.OutcomeNeedsSelection, out.Status)
	require.Greater(t, len(out.Candidates), 1)
	assert.Empty(t, f.requests())
	last := out.Events[len(out.Events)-1]
	assert.Equal(t, model.EventNeedsSelection, last.Kind)
	assert.Equal(t, 40, last.Progress)

	bad := o.SelectCandidate(context.Background(), len(out.Candidates))
	assert.Equal(t, model.OutcomeError, bad.Status)
	assert.Contains(t, bad.Message, "out of range")
	bad = o.SelectCandidate(context.Background(), -1)
	assert.Equal(t, model.OutcomeError, bad.Status)

	sel := o.SelectCandidate(context.Background(), 0)
	require.Equal(t, model.OutcomeReady, sel.Status, sel.Message)
	assert.Equal(t, out.Candidates[0].Canonical, sel.Record.Canonical)
	assert.Equal(t, "corsair vengeance", sel.Record.RawInput)
	assertMonotonic(t, sel.Events)
}

func TestProcessInput_NoCandidates(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeFetcher{}, catalog.NewIndex(nil))

	out := o.ProcessInput(context.Background(), "completely unknown gadget")
	assert.Equal(t, model.OutcomeError, out.Status)

	out = o.ProcessInput(context.Background(), "   ")
	assert.Equal(t, model.OutcomeError, out.Status)
}

func TestProcessInput_Idempotent(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string][]model.SpecField{arkURL: cpuSpecs(model.TierOfficial)}}
	o := newTestOrchestrator(t, f, nil)

	first := o.ProcessInput(context.Background(), "Intel Core i7-12700K BX8071512700K")
	second := o.ProcessInput(context.Background(), "Intel Core i7-12700K BX8071512700K")

	require.Equal(t, model.OutcomeReady, first.Status)
	require.Equal(t, model.OutcomeReady, second.Status)
	assert.Equal(t, first.Record.SourceTier, second.Record.SourceTier)
	assert.Equal(t, first.Record.Canonical, second.Record.Canonical)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, kinds(first.Events), kinds(second.Events))
}

func TestSession_StackingAndReplacement(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string][]model.SpecField{arkURL: cpuSpecs(model.TierOfficial)}}
	o := newTestOrchestrator(t, f, nil)
	ctx := context.Background()

	require.Equal(t, model.OutcomeReady, o.ProcessInput(ctx, "Intel Core i7-12700K BX8071512700K").Status)
	require.Equal(t, model.OutcomeReady, o.ProcessInput(ctx, "Intel Core i7-12700K BX8071512700K").Status)
	require.Equal(t, model.OutcomeReady, o.ProcessInput(ctx, "Corsair CMK16GX4M2B3200C16").Status)
	require.Equal(t, model.OutcomeReady, o.ProcessInput(ctx, "Corsair CMK16GX4M2B3200C16").Status)

	comps := o.Components()
	require.Len(t, comps, 3)
	assert.Equal(t, model.ComponentCPU, comps[0].Type)
	assert.Equal(t, model.ComponentRAM, comps[1].Type)
	assert.Equal(t, model.ComponentRAM, comps[2].Type)

	o.Reset()
	assert.Empty(t, o.Components())
}

func TestProcessInput_CanceledContext(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string][]model.SpecField{arkURL: cpuSpecs(model.TierOfficial)}}
	o := newTestOrchestrator(t, f, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := o.ProcessInput(ctx, "Intel Core i7-12700K BX8071512700K")
	assert.Equal(t, model.OutcomeError, out.Status)
	assert.Empty(t, f.requests())
}

func TestProcessInput_ProductURL(t *testing.T) {
	t.Parallel()

	url := "https://www.techpowerup.com/gpu-specs/geforce-rtx-4090.c3889"
	f := &fakeFetcher{pages: map[string][]model.SpecField{url: {
		field("gpu.shaders", "16384", "", model.TierReference),
		field("gpu.vram_gb", "24", "GB", model.TierReference),
	}}}
	o := newTestOrchestrator(t, f, nil)

	out := o.ProcessInput(context.Background(), url)
	require.Equal(t, model.OutcomeReady, out.Status, out.Message)
	assert.Equal(t, model.TierReference, out.Record.SourceTier)
	assert.Equal(t, url, out.Record.SourceURL)
}

func TestProcessInput_WebSearchCrossValidates(t *testing.T) {
	t.Parallel()

	const input = "F5-6000J3038F16GX2"
	urls := []string{
		"https://www.gskill.com/product/165/390/1665020865/F5-6000J3038F16GX2-TZ5RK",
		"https://www.techpowerup.com/memory/f5-6000j3038f16gx2",
		"https://www.kingston.com/unused",
		"https://www.crucial.com/also-unused",
	}
	ram := func(speed string) []model.SpecField {
		return []model.SpecField{
			field("ram.speed_effective_mt_s", speed, "MT/s", model.TierOfficial),
			field("ram.type", "DDR5", "", model.TierOfficial),
			field("ram.latency_cl", "30", "", model.TierOfficial),
		}
	}
	f := &fakeFetcher{pages: map[string][]model.SpecField{
		urls[0]: ram("6000"),
		urls[1]: ram("6000"),
		urls[2]: ram("6200"),
	}}

	search := mocks.NewMockClient(t)
	search.On("Search", mock.Anything, input+" specifications").Return(&jina.SearchResponse{Data: []jina.SearchResult{
		{URL: "https://forum.example.com/thread/1"},
		{URL: urls[0]},
		{URL: urls[1]},
		{URL: urls[2]},
		{URL: urls[3]},
	}}, nil).Once()

	st, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "hw.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	v, err := crossval.New(f, crossval.Config{})
	require.NoError(t, err)
	o := newTestOrchestrator(t, f, catalog.NewIndex(nil), WithValidator(v), WithSearch(search), WithStore(st))

	out := o.ProcessInput(context.Background(), input)
	require.Equal(t, model.OutcomeReady, out.Status, out.Message)
	assert.Contains(t, kinds(out.Events), model.EventWebSearch)
	assertMonotonic(t, out.Events)

	rec := out.Record
	assert.Equal(t, model.TierReference, rec.SourceTier)
	assert.Equal(t, crossval.SourceName, rec.SourceName)
	assert.Equal(t, "G.Skill", rec.Canonical.Brand)
	assert.Equal(t, "6000", model.SpecValue(rec.Specs, "ram.speed_effective_mt_s"))
	assert.Len(t, f.requests(), 3)

	saved, err := st.ListValidated(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, input, saved[0].Canonical.Model)

	// The validated entry now resolves from the index without searching.
	again := o.ProcessInput(context.Background(), input)
	require.Equal(t, model.OutcomeReady, again.Status, again.Message)
	assert.NotContains(t, kinds(again.Events), model.EventWebSearch)
	assert.Len(t, f.requests(), 3)

	fresh := newTestOrchestrator(t, f, catalog.NewIndex(nil), WithStore(st))
	n, err := fresh.LoadValidated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.OutcomeReady, fresh.ProcessInput(context.Background(), input).Status)
}

func TestProcessInput_WebSearchNeedsTwoTargets(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	search := mocks.NewMockClient(t)
	// One open search, then one restricted to the uncovered reference domain.
	search.On("Search", mock.Anything, "F5-6400J3239G16GX2 specifications").Return(&jina.SearchResponse{Data: []jina.SearchResult{
		{URL: "https://www.gskill.com/product/1"},
		{URL: "https://www.gskill.com/product/2"},
	}}, nil).Twice()

	v, err := crossval.New(f, crossval.Config{})
	require.NoError(t, err)
	o := newTestOrchestrator(t, f, catalog.NewIndex(nil), WithValidator(v), WithSearch(search))

	out := o.ProcessInput(context.Background(), "F5-6400J3239G16GX2")
	assert.Equal(t, model.OutcomeError, out.Status)
	assert.Empty(t, f.requests())
}

func TestProcessInput_WebSearchTargetsCarryBrowserDecision(t *testing.T) {
	t.Parallel()

	const input = "F5-6000J3038F16GX2"
	gskillURL := "https://www.gskill.com/product/165/390/1665020865/F5-6000J3038F16GX2-TZ5RK"
	tpuRAM := "https://www.techpowerup.com/memory/f5-6000j3038f16gx2"

	var (
		mu    sync.Mutex
		sites []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site := r.URL.Query().Get("site")
		mu.Lock()
		sites = append(sites, site)
		mu.Unlock()
		var hits []jina.SearchResult
		switch site {
		case "":
			hits = []jina.SearchResult{{URL: gskillURL}}
		case "techpowerup.com":
			hits = []jina.SearchResult{{URL: tpuRAM}}
		}
		_ = json.NewEncoder(w).Encode(jina.SearchResponse{Code: 200, Data: hits})
	}))
	t.Cleanup(srv.Close)

	ram := []model.SpecField{
		field("ram.speed_effective_mt_s", "6000", "MT/s", model.TierOfficial),
		field("ram.type", "DDR5", "", model.TierOfficial),
	}
	f := &fakeFetcher{pages: map[string][]model.SpecField{gskillURL: ram, tpuRAM: ram}}
	v, err := crossval.New(f, crossval.Config{})
	require.NoError(t, err)
	search := jina.NewClient("", jina.WithSearchBaseURL(srv.URL))
	o := newTestOrchestrator(t, f, catalog.NewIndex(nil), WithValidator(v), WithSearch(search))
	o.Sources().MarkBlocked(tpuRAM)

	out := o.ProcessInput(context.Background(), input)
	require.Equal(t, model.OutcomeReady, out.Status, out.Message)

	mu.Lock()
	assert.Equal(t, []string{"", "techpowerup.com"}, sites)
	mu.Unlock()

	reqs := f.requests()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		// gskill declares the browser engine; techpowerup.com is blocked.
		assert.True(t, r.UseBrowser, r.URL)
	}
}

func TestProcessInput_ReferenceStepUsesSourceEngine(t *testing.T) {
	t.Parallel()

	chains := sourcechain.DefaultChains()
	cpu := chains[model.ComponentCPU]
	for i := range cpu {
		if cpu[i].Name == "techpowerup_cpu" {
			cpu[i].Engine = model.EngineBrowser
		}
	}
	mgr := sourcechain.NewManager(chains)
	idx, err := catalog.Load()
	require.NoError(t, err)
	refs, err := catalog.LoadReferenceTable()
	require.NoError(t, err)

	f := &fakeFetcher{
		pages: map[string][]model.SpecField{tpuURL: cpuSpecs(model.TierReference)},
		errs:  map[string]error{arkURL: eris.New("connection reset")},
	}
	o := New(Config{}, mgr, resolver.New(idx, mgr), f,
		WithReferenceTable(refs), WithClock(func() time.Time { return fixedNow }))

	out := o.ProcessInput(context.Background(), "Intel Core i7-12700K BX8071512700K")
	require.Equal(t, model.OutcomeReady, out.Status, out.Message)
	assert.Equal(t, model.TierReference, out.Record.SourceTier)

	reqs := f.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, arkURL, reqs[0].URL)
	assert.False(t, reqs[0].UseBrowser)
	assert.Equal(t, tpuURL, reqs[1].URL)
	assert.True(t, reqs[1].UseBrowser)
	assert.False(t, mgr.IsBlocked(tpuURL))
}
