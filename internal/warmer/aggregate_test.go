package warmer

import (
	"context"
	"errors"
	"testing"

	"github.com/hydra-warm/hydra-warm/internal/logging"
)

type stubWarmer struct {
	optional bool
	err      error
	calls    int
	cacheDir string
}

func (s *stubWarmer) IsOptional() bool { return s.optional }

func (s *stubWarmer) WarmUp(_ context.Context, cacheDir string) error {
	s.calls++
	s.cacheDir = cacheDir
	return s.err
}

func TestAggregateSkipsOptionalUnlessEnabled(t *testing.T) {
	mandatory := &stubWarmer{}
	optional := &stubWarmer{optional: true}

	agg := NewAggregate(false, logging.Discard()).Add("hydrators", mandatory).Add("router", optional)
	results, err := agg.WarmUp(context.Background(), "/var/cache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mandatory.calls != 1 || mandatory.cacheDir != "/var/cache" {
		t.Fatalf("mandatory warmer should run with cacheDir, got %+v", mandatory)
	}
	if optional.calls != 0 {
		t.Fatalf("optional warmer should be skipped")
	}
	if len(results) != 2 || results[1].Status() != "skipped" {
		t.Fatalf("unexpected results: %+v", results)
	}

	agg = NewAggregate(true, logging.Discard()).Add("router", optional)
	if _, err := agg.WarmUp(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if optional.calls != 1 {
		t.Fatalf("optional warmer should run when enabled")
	}
}

func TestAggregateOptionalFailureDoesNotAbort(t *testing.T) {
	failing := &stubWarmer{optional: true, err: errors.New("flaky")}
	after := &stubWarmer{}

	agg := NewAggregate(true, logging.Discard()).Add("flaky", failing).Add("hydrators", after)
	results, err := agg.WarmUp(context.Background(), "")
	if err != nil {
		t.Fatalf("optional failure must not abort: %v", err)
	}
	if after.calls != 1 {
		t.Fatalf("later warmers should still run")
	}
	if results[0].Status() != "failed" || results[1].Status() != "ok" {
		t.Fatalf("unexpected statuses: %s %s", results[0].Status(), results[1].Status())
	}
}

func TestAggregateMandatoryFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	failing := &stubWarmer{err: boom}
	after := &stubWarmer{}

	agg := NewAggregate(true, logging.Discard()).Add("hydrators", failing).Add("later", after)
	results, err := agg.WarmUp(context.Background(), "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if after.calls != 0 {
		t.Fatalf("warmers after a mandatory failure must not run")
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if last := agg.LastResults(); len(last) != 1 || last[0].Err == nil {
		t.Fatalf("LastResults should mirror the aborted run: %+v", last)
	}
	if names := agg.Names(); len(names) != 2 || names[0] != "hydrators" {
		t.Fatalf("unexpected names: %v", names)
	}
}
