package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// mockVerificationService implements primary.VerificationService for testing
type mockVerificationService struct {
	recordFn func(ctx context.Context, req primary.RecordVerificationRequest) (*primary.RecordVerificationResponse, error)
	listFn   func(ctx context.Context, solutionID string) ([]*primary.Verification, error)
}

func (m *mockVerificationService) RecordVerification(ctx context.Context, req primary.RecordVerificationRequest) (*primary.RecordVerificationResponse, error) {
	if m.recordFn != nil {
		return m.recordFn(ctx, req)
	}
	return &primary.RecordVerificationResponse{
		Decision:           primary.Allow(),
		VerificationID:     "VER-001",
		PreviousConfidence: 0.30,
		NewConfidence:      0.51,
		ConfidenceDelta:    0.21,
		CoinsAwarded:       3,
	}, nil
}

func (m *mockVerificationService) ListVerifications(ctx context.Context, solutionID string) ([]*primary.Verification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, solutionID)
	}
	return []*primary.Verification{}, nil
}

func TestVerificationAdapter_Record(t *testing.T) {
	mock := &mockVerificationService{}
	var buf bytes.Buffer
	adapter := NewVerificationAdapter(mock, &buf)

	req := primary.RecordVerificationRequest{
		IP:            "10.0.0.1",
		ContributorID: "AGENT-002",
		SolutionID:    "SOL-001",
		Outcome:       "success",
	}
	if err := adapter.Record(context.Background(), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Recorded success verification VER-001") {
		t.Errorf("expected confirmation, got: %s", output)
	}
	if !strings.Contains(output, "30% → 51%") {
		t.Errorf("expected confidence movement, got: %s", output)
	}
	if !strings.Contains(output, "+3 coins") {
		t.Errorf("expected coin award, got: %s", output)
	}
	if strings.Contains(output, "marked solved") {
		t.Errorf("expected no solved line, got: %s", output)
	}
}

func TestVerificationAdapter_Record_SolvesIssue(t *testing.T) {
	mock := &mockVerificationService{
		recordFn: func(ctx context.Context, req primary.RecordVerificationRequest) (*primary.RecordVerificationResponse, error) {
			return &primary.RecordVerificationResponse{
				Decision:           primary.Allow(),
				VerificationID:     "VER-009",
				PreviousConfidence: 0.65,
				NewConfidence:      0.73,
				ConfidenceDelta:    0.08,
				IssueSolved:        true,
				CoinsAwarded:       3,
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewVerificationAdapter(mock, &buf)

	if err := adapter.Record(context.Background(), primary.RecordVerificationRequest{Outcome: "success"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(buf.String(), "Issue marked solved") {
		t.Errorf("expected solved announcement, got: %s", buf.String())
	}
}

func TestVerificationAdapter_Record_SelfVerificationDenied(t *testing.T) {
	mock := &mockVerificationService{
		recordFn: func(ctx context.Context, req primary.RecordVerificationRequest) (*primary.RecordVerificationResponse, error) {
			return &primary.RecordVerificationResponse{
				Decision: primary.Decision{Allowed: false, Reason: primary.DenySelfVerification},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewVerificationAdapter(mock, &buf)

	if err := adapter.Record(context.Background(), primary.RecordVerificationRequest{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(buf.String(), "cannot verify your own solution") {
		t.Errorf("expected self-verification refusal, got: %s", buf.String())
	}
}

func TestVerificationAdapter_List(t *testing.T) {
	mock := &mockVerificationService{
		listFn: func(ctx context.Context, solutionID string) ([]*primary.Verification, error) {
			return []*primary.Verification{
				{ID: "VER-002", Outcome: "failure", ConfidenceDelta: -0.04, CreatedBy: "AGENT-003", CreatedAt: time.Now()},
				{ID: "VER-001", Outcome: "success", ConfidenceDelta: 0.21, CreatedBy: "AGENT-002", CreatedAt: time.Now()},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewVerificationAdapter(mock, &buf)

	if err := adapter.List(context.Background(), "SOL-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "VER-002") || !strings.Contains(output, "VER-001") {
		t.Errorf("expected both rows, got: %s", output)
	}
	if !strings.Contains(output, "failure") {
		t.Errorf("expected outcome column, got: %s", output)
	}
}
