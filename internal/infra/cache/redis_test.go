package cache

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/tuning"
)

func testLogger() *logger.Logger {
	return logger.NewLoggerTo(io.Discard)
}

func newTestSource(t *testing.T) (*RedisTuningSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisTuningSource(client), mr
}

func TestRedisTuningSource_Revision(t *testing.T) {
	src, mr := newTestSource(t)
	ctx := context.Background()

	// Missing key reads as revision 0.
	rev, err := src.Revision(ctx)
	if err != nil {
		t.Fatalf("Revision() error: %v", err)
	}
	if rev != 0 {
		t.Errorf("revision = %d, want 0 with no key", rev)
	}

	mr.Set(revisionKey, "7")
	rev, err = src.Revision(ctx)
	if err != nil {
		t.Fatalf("Revision() error: %v", err)
	}
	if rev != 7 {
		t.Errorf("revision = %d, want 7", rev)
	}
}

func TestRedisTuningSource_RevisionMalformed(t *testing.T) {
	src, mr := newTestSource(t)
	mr.Set(revisionKey, "not-a-number")

	if _, err := src.Revision(context.Background()); err == nil {
		t.Error("expected an error for a malformed revision")
	}
}

func TestRedisTuningSource_Load(t *testing.T) {
	src, mr := newTestSource(t)
	ctx := context.Background()

	want := tuning.Defaults()
	want.DriftPenalties.FlirtyColdMood = 50
	payload, _ := json.Marshal(want)
	mr.Set(tuningKey, string(payload))
	mr.Set(revisionKey, "3")

	got, rev, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rev != 3 {
		t.Errorf("revision = %d, want 3", rev)
	}
	if got.DriftPenalties.FlirtyColdMood != 50 {
		t.Errorf("penalty = %d, want 50", got.DriftPenalties.FlirtyColdMood)
	}
}

func TestRedisTuningSource_LoadMissingPayload(t *testing.T) {
	src, _ := newTestSource(t)
	if _, _, err := src.Load(context.Background()); err == nil {
		t.Error("expected an error when the payload key is absent")
	}
}

func TestRedisTuningSource_LoadMalformedPayload(t *testing.T) {
	src, mr := newTestSource(t)
	mr.Set(tuningKey, "{not json")

	if _, _, err := src.Load(context.Background()); err == nil {
		t.Error("expected an error for a malformed payload")
	}
}

func TestRevisionCacheKeepsServingOnMalformedUpdate(t *testing.T) {
	// End to end through the revision cache: a corrupt remote payload must
	// not replace a previously good tuning.
	src, mr := newTestSource(t)
	ctx := context.Background()

	good := tuning.Defaults()
	good.ModifierConfig.LowerWarmthDelta = 25
	payload, _ := json.Marshal(good)
	mr.Set(tuningKey, string(payload))
	mr.Set(revisionKey, "1")

	cache := tuning.NewRevisionCache(src, testLogger())
	if got := cache.Tuning(ctx); got.ModifierConfig.LowerWarmthDelta != 25 {
		t.Fatalf("delta = %d, want 25 from the first load", got.ModifierConfig.LowerWarmthDelta)
	}

	mr.Set(tuningKey, "{corrupt")
	mr.Set(revisionKey, "2")
	if got := cache.Tuning(ctx); got.ModifierConfig.LowerWarmthDelta != 25 {
		t.Errorf("delta = %d, want the last good value after a corrupt update", got.ModifierConfig.LowerWarmthDelta)
	}
}
