package compare

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kartik-devs/lcp-compare/config"
	"github.com/kartik-devs/lcp-compare/diff"
	"github.com/kartik-devs/lcp-compare/storage"
)

const (
	keyV1 = "3424/Output/202501010900-3424-LCP.pdf"
	keyV2 = "3424/Output/202502010900-3424-LCP.pdf"
	keyV3 = "3424/Output/202503010900-3424-LCP.pdf"
)

const (
	// V1 has sections 1-3; V2 drops Section 3; V3 adds Section 9.
	textV1 = "Section 1: Summary\npatient summary\nSection 2: Care Plan\ncare plan detail\nSection 3: Medications\nmedication list"
	textV2 = "Section 1: Summary\npatient summary\nSection 2: Care Plan\ncare plan detail"
	textV3 = "Section 1: Summary\npatient summary\nSection 2: Care Plan\ncare plan detail\nSection 9: Appendix\nappendix content"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCfg() config.CompareCfg {
	return config.CompareCfg{
		MaxWorkers:    2,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		Timeout:       5 * time.Second,
	}
}

func seedVersions(t *testing.T) *storage.MemStore {
	t.Helper()
	store := storage.NewMemStore()
	store.Put(keyV1, []byte(textV1), time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	store.Put(keyV2, []byte(textV2), time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	store.Put(keyV3, []byte(textV3), time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	return store
}

func sectionStatus(t *testing.T, pair Pair, name string) diff.Status {
	t.Helper()
	for _, sec := range pair.Sections {
		if sec.Name == name {
			return sec.Status
		}
	}
	t.Fatalf("section %q not in pair %s → %s", name, pair.LeftKey, pair.RightKey)
	return ""
}

func TestSequentialComparison(t *testing.T) {
	engine := New(seedVersions(t), nil, nil, testCfg(), quietLogger())

	res, err := engine.Compare(context.Background(), "3424", Selection{Mode: ModeSequential})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(res.Pairs) != 2 {
		t.Fatalf("expected N-1=2 pairs, got %d", len(res.Pairs))
	}
	if res.Mode != ModeSequential || res.CaseID != "3424" || res.RunID == "" {
		t.Errorf("result metadata: %+v", res)
	}

	p12 := res.Pairs[0]
	if p12.LeftKey != keyV1 || p12.RightKey != keyV2 || !p12.Comparable {
		t.Fatalf("pair 0: %+v", p12)
	}
	if got := sectionStatus(t, p12, "Section 3: Medications"); got != diff.StatusRemoved {
		t.Errorf("V1→V2 Section 3: got %s, want removed", got)
	}
	if got := sectionStatus(t, p12, "Section 1: Summary"); got != diff.StatusUnchanged {
		t.Errorf("V1→V2 Section 1: got %s, want unchanged", got)
	}
	if p12.Summary.Removed != 1 || p12.Summary.Unchanged != 2 {
		t.Errorf("V1→V2 summary: %+v", p12.Summary)
	}

	p23 := res.Pairs[1]
	if p23.LeftKey != keyV2 || p23.RightKey != keyV3 {
		t.Fatalf("pair 1: %+v", p23)
	}
	if got := sectionStatus(t, p23, "Section 9: Appendix"); got != diff.StatusAdded {
		t.Errorf("V2→V3 Section 9: got %s, want added", got)
	}
	if p23.Summary.Added != 1 || p23.Summary.Unchanged != 2 {
		t.Errorf("V2→V3 summary: %+v", p23.Summary)
	}
}

func TestSelectiveComparesEndpointsOnly(t *testing.T) {
	engine := New(seedVersions(t), nil, nil, testCfg(), quietLogger())

	// V2 sits inside the selection but is not an endpoint; V1 is compared
	// directly to V3 and both changes surface in the single pair.
	res, err := engine.Compare(context.Background(), "3424", Selection{
		Mode:        ModeSelective,
		VersionKeys: []string{keyV1, keyV2, keyV3},
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	pair := res.Pairs[0]
	if pair.LeftKey != keyV1 || pair.RightKey != keyV3 {
		t.Errorf("endpoints: %s → %s", pair.LeftKey, pair.RightKey)
	}
	if got := sectionStatus(t, pair, "Section 3: Medications"); got != diff.StatusRemoved {
		t.Errorf("Section 3: got %s, want removed", got)
	}
	if got := sectionStatus(t, pair, "Section 9: Appendix"); got != diff.StatusAdded {
		t.Errorf("Section 9: got %s, want added", got)
	}
}

func TestSequentialExtractionFailureMarksPairs(t *testing.T) {
	store := seedVersions(t)
	// Overwrite V2 with bytes no strategy can read.
	store.Put(keyV2, []byte{0x00, 0xff, 0xfe, 0x00}, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))

	engine := New(store, nil, nil, testCfg(), quietLogger())
	res, err := engine.Compare(context.Background(), "3424", Selection{Mode: ModeSequential})
	if err != nil {
		t.Fatalf("two usable versions remain, must not fail: %v", err)
	}

	// Only the defined sequential pairs exist; no fabricated V1↔V3 pair.
	if len(res.Pairs) != 2 {
		t.Fatalf("pairs: %d", len(res.Pairs))
	}
	for _, pair := range res.Pairs {
		if pair.Comparable {
			t.Errorf("pair %s → %s should not be comparable", pair.LeftKey, pair.RightKey)
		}
		if len(pair.FailedKeys) != 1 || pair.FailedKeys[0] != keyV2 {
			t.Errorf("failed keys: %v", pair.FailedKeys)
		}
		if len(pair.Sections) != 0 {
			t.Errorf("failed pair carries sections")
		}
	}

	if len(res.VersionErrors) != 1 {
		t.Fatalf("version errors: %v", res.VersionErrors)
	}
	ve := res.VersionErrors[0]
	if ve.Key != keyV2 || ve.Stage != "extract" {
		t.Errorf("version error: %+v", ve)
	}
}

func TestInsufficientVersions(t *testing.T) {
	store := storage.NewMemStore()
	store.Put(keyV1, []byte(textV1), time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	engine := New(store, nil, nil, testCfg(), quietLogger())

	tests := []struct {
		name string
		sel  Selection
	}{
		{"sequential single version", Selection{Mode: ModeSequential}},
		{"selective single key", Selection{Mode: ModeSelective, VersionKeys: []string{keyV1}}},
		{"selective endpoint missing", Selection{Mode: ModeSelective, VersionKeys: []string{keyV1, "3424/Output/nope.pdf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Compare(context.Background(), "3424", tt.sel)
			if !errors.Is(err, ErrInsufficientVersions) {
				t.Errorf("got %v, want ErrInsufficientVersions", err)
			}
			var ce *ComparisonError
			if !errors.As(err, &ce) {
				t.Errorf("error is not a ComparisonError: %v", err)
			}
		})
	}
}

func TestSelectiveMissingEndpointRecordsFetchError(t *testing.T) {
	engine := New(seedVersions(t), nil, nil, testCfg(), quietLogger())

	_, err := engine.Compare(context.Background(), "3424", Selection{
		Mode:        ModeSelective,
		VersionKeys: []string{keyV1, "3424/Output/nope.pdf"},
	})

	var ce *ComparisonError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComparisonError, got %v", err)
	}
	if len(ce.Errors) != 1 || ce.Errors[0].Stage != "fetch" {
		t.Errorf("per-version errors: %+v", ce.Errors)
	}
	if !errors.Is(ce.Errors[0].Err, storage.ErrNotFound) {
		t.Errorf("cause: %v", ce.Errors[0].Err)
	}
}

func TestUnknownMode(t *testing.T) {
	engine := New(seedVersions(t), nil, nil, testCfg(), quietLogger())

	if _, err := engine.Compare(context.Background(), "3424", Selection{Mode: "bulk"}); err == nil {
		t.Error("unknown mode accepted")
	}
}

// flakyStore fails the first Get per key with a transient error.
type flakyStore struct {
	*storage.MemStore
	mu    sync.Mutex
	tried map[string]bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	first := !f.tried[key]
	f.tried[key] = true
	f.mu.Unlock()
	if first {
		return nil, &storage.TransientError{Err: errors.New("throttled")}
	}
	return f.MemStore.Get(ctx, key)
}

func TestTransientFetchRetried(t *testing.T) {
	store := &flakyStore{MemStore: seedVersions(t), tried: make(map[string]bool)}
	engine := New(store, nil, nil, testCfg(), quietLogger())

	res, err := engine.Compare(context.Background(), "3424", Selection{Mode: ModeSequential})
	if err != nil {
		t.Fatalf("transient failures should be retried: %v", err)
	}
	if len(res.VersionErrors) != 0 {
		t.Errorf("version errors after successful retry: %v", res.VersionErrors)
	}
	if len(res.Pairs) != 2 {
		t.Errorf("pairs: %d", len(res.Pairs))
	}
}

func TestCancelledContextAbortsWithoutResult(t *testing.T) {
	engine := New(seedVersions(t), nil, nil, testCfg(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.Compare(ctx, "3424", Selection{Mode: ModeSequential})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if res != nil {
		t.Error("partial result delivered after cancellation")
	}
}
