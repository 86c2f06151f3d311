package health

import (
	"context"
	"errors"
	"testing"
)

type fakeChecker struct{ err error }

func (f *fakeChecker) Ping(_ context.Context) error        { return f.err }
func (f *fakeChecker) HealthCheck(_ context.Context) error { return f.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&fakeChecker{}, &fakeChecker{})
	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("expected healthy, got %v", report.Status)
	}
	if report.Checks["database"] != CheckOK || report.Checks["ai_provider"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_AIDegraded(t *testing.T) {
	svc := New(&fakeChecker{}, &fakeChecker{err: errors.New("down")})
	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("expected degraded, got %v", report.Status)
	}
	if report.Checks["ai_provider"] != CheckError {
		t.Errorf("expected ai_provider error, got %v", report.Checks)
	}
}

func TestCheck_NilAIChecker(t *testing.T) {
	svc := New(&fakeChecker{}, nil)
	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("expected healthy, got %v", report.Status)
	}
	if _, ok := report.Checks["ai_provider"]; ok {
		t.Error("ai_provider must be absent when unchecked")
	}
}
