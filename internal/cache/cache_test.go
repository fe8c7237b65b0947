package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/supplematch/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("u1", "00000000000000aa", "cat1")
	if a != Key("u1", "00000000000000aa", "cat1") {
		t.Error("key must be deterministic")
	}

	others := []string{
		Key("u2", "00000000000000aa", "cat1"),
		Key("u1", "00000000000000ab", "cat1"),
		Key("u1", "00000000000000aa", "cat2"),
	}
	for _, o := range others {
		if o == a {
			t.Errorf("expected distinct key, got %s twice", a)
		}
	}
	if len(a) != len("supplematch:v1:")+16 {
		t.Errorf("unexpected key format %q", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	value := []byte(`{"a":1}`)
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value[0] = 'X'

	got, ok := c.Get("k")
	if !ok || string(got) != `{"a":1}` {
		t.Errorf("expected stored copy, got %q (%v)", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("1"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if _, ok := c.Get("supplematch:v1:abc"); ok {
		t.Fatal("expected miss")
	}
	if err := c.Set("supplematch:v1:abc", []byte(`{"x":true}`), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok := c.Get("supplematch:v1:abc")
	if !ok || string(got) != `{"x":true}` {
		t.Errorf("unexpected value %q (%v)", got, ok)
	}

	if _, err := os.Stat(filepath.Join(dir, "supplematch_v1_abc.cache")); err != nil {
		t.Errorf("expected sanitized file name: %v", err)
	}

	if err := c.Delete("supplematch:v1:abc"); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if err := c.Delete("supplematch:v1:abc"); err != nil {
		t.Errorf("deleting a missing key must not fail: %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set("k", []byte(`1`), 0)
	now = now.Add(59 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expected expired file to be removed")
	}
}

func TestDiskCache_RejectsNonJSON(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Set("k", []byte("not json"), 0); err == nil {
		t.Error("expected error for non-JSON value")
	}
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := os.WriteFile(c.path("k"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected corrupt entry to miss")
	}
}

func TestDiskCache_ClearKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	foreign := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(foreign, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected cache entries removed")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("foreign file must survive clear")
	}

	if err := NewDiskCache(filepath.Join(dir, "missing"), 0).Clear(); err != nil {
		t.Errorf("clearing a missing dir must not fail: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	c := newLayered(memory, disk)

	_ = disk.Set("k", []byte(`"v"`), 0)
	if _, ok := memory.Get("k"); ok {
		t.Fatal("memory should start empty")
	}

	got, ok := c.Get("k")
	if !ok || string(got) != `"v"` {
		t.Fatalf("expected disk hit, got %q (%v)", got, ok)
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("expected disk hit promoted to memory")
	}

	if err := c.Delete("k"); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestResults_RoundTrip(t *testing.T) {
	r := NewResults(NewMemoryCache(time.Minute, time.Minute), 0)
	key := Key("u1", "00000000000000aa", "v")

	if _, ok := r.Get(key); ok {
		t.Fatal("expected miss")
	}

	in := &model.RecommendationResult{
		UserID:      "u1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Fingerprint: "00000000000000aa",
		Recommendations: []model.SupplementRecommendation{
			{CandidateID: "creatine", Score: 72, Confidence: model.ConfidenceHigh},
		},
		Warnings: []string{},
	}
	if err := r.Put(key, in); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	out, ok := r.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if out.UserID != "u1" || out.Recommendations[0].Score != 72 || !out.GeneratedAt.Equal(in.GeneratedAt) {
		t.Errorf("unexpected cached result %+v", out)
	}
}

func TestResults_CorruptEntryDropped(t *testing.T) {
	store := NewMemoryCache(time.Minute, time.Minute)
	_ = store.Set("k", []byte("[1,2"), 0)

	r := NewResults(store, 0)
	if _, ok := r.Get("k"); ok {
		t.Error("expected miss for undecodable entry")
	}
	if _, ok := store.Get("k"); ok {
		t.Error("expected undecodable entry removed")
	}
}

func TestResults_Disabled(t *testing.T) {
	r := NewResults(nil, 0)
	if err := r.Put("k", &model.RecommendationResult{}); err != nil {
		t.Errorf("disabled cache must accept puts: %v", err)
	}
	if _, ok := r.Get("k"); ok {
		t.Error("disabled cache must miss")
	}
}

func TestNew(t *testing.T) {
	if New(model.CacheConfig{Enabled: false}) != nil {
		t.Error("expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a dir")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a dir")
	}
}
