package document

import (
	"errors"
	"testing"
)

func TestNew_RejectsEmptyBody(t *testing.T) {
	_, err := New("", nil)
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("New(\"\") error = %v, want ErrEmptyBody", err)
	}
}

func TestNew_StartsInDraft(t *testing.T) {
	d, err := New("hello", map[string]string{"author": "ada"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.StageName() != StageDraft {
		t.Errorf("StageName() = %q, want %q", d.StageName(), StageDraft)
	}
	meta := d.Meta()
	if meta["author"] != "ada" {
		t.Errorf("Meta()[author] = %q, want %q", meta["author"], "ada")
	}
	if meta[MetaCreatedAt] == "" {
		t.Error("Meta() missing created_at")
	}
}

func TestDraft_AddTextAccumulates(t *testing.T) {
	d, _ := New("draft text", nil)
	d.AddText(" more").AddText(" and more")

	published := d.RequestReview().Approve("first").Approve("second")
	if got := published.Content(); got != "draft text more and more" {
		t.Errorf("Content() = %q, want %q", got, "draft text more and more")
	}
}

// Full round trip from the two-approval policy: draft, revise, submit,
// reject, fix, resubmit, approve twice.
func TestLifecycle_RoundTrip(t *testing.T) {
	d, err := New("draft text", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.AddText(" more")

	review := d.RequestReview()
	if review.StageName() != StageInReview {
		t.Fatalf("StageName() = %q, want %q", review.StageName(), StageInReview)
	}

	d2 := review.Reject("ron", "needs a conclusion")
	if d2.StageName() != StageDraft {
		t.Fatalf("after Reject, StageName() = %q, want %q", d2.StageName(), StageDraft)
	}
	d2.AddText(" fix")

	second := d2.RequestReview().Approve("ron")
	if second.StageName() != StageSecondReview {
		t.Fatalf("after one Approve, StageName() = %q, want %q", second.StageName(), StageSecondReview)
	}

	published := second.Approve("maria")
	if published.StageName() != StagePublished {
		t.Fatalf("StageName() = %q, want %q", published.StageName(), StagePublished)
	}
	if got := published.Content(); got != "draft text more fix" {
		t.Errorf("Content() = %q, want %q", got, "draft text more fix")
	}

	// Terminal stage is stable across repeated reads.
	if published.Content() != published.Content() {
		t.Error("Content() not stable across calls")
	}
}

func TestReject_PreservesReviewMetadata(t *testing.T) {
	d, _ := New("body", nil)
	second := d.RequestReview().Approve("first-reviewer")
	draft := second.Reject("second-reviewer", "tone is off")

	meta := draft.Meta()
	if meta[MetaReviewedBy] != "first-reviewer" {
		t.Errorf("Meta()[reviewed_by] = %q, want %q", meta[MetaReviewedBy], "first-reviewer")
	}
	if meta[MetaRejectedBy] != "second-reviewer" {
		t.Errorf("Meta()[rejected_by] = %q, want %q", meta[MetaRejectedBy], "second-reviewer")
	}
	if meta[MetaRejectionNote] != "tone is off" {
		t.Errorf("Meta()[rejection_note] = %q, want %q", meta[MetaRejectionNote], "tone is off")
	}
}

func TestApprove_RecordsReviewers(t *testing.T) {
	d, _ := New("body", nil)
	published := d.RequestReview().Approve("first").Approve("second")

	meta := published.Meta()
	if meta[MetaReviewedBy] != "first" {
		t.Errorf("Meta()[reviewed_by] = %q, want %q", meta[MetaReviewedBy], "first")
	}
	if meta[MetaSecondReviewedBy] != "second" {
		t.Errorf("Meta()[second_reviewed_by] = %q, want %q", meta[MetaSecondReviewedBy], "second")
	}
	if meta[MetaPublishedAt] == "" {
		t.Error("Meta() missing published_at")
	}
}

func TestTransition_InvalidatesSource(t *testing.T) {
	d, _ := New("body", nil)
	_ = d.RequestReview()

	defer func() {
		if r := recover(); r == nil {
			t.Error("using a Draft after RequestReview should panic")
		}
	}()
	d.AddText(" stale")
}

func TestTransition_InvalidatesReviewStage(t *testing.T) {
	d, _ := New("body", nil)
	review := d.RequestReview()
	_ = review.Approve("first")

	defer func() {
		if r := recover(); r == nil {
			t.Error("using a PendingReview after Approve should panic")
		}
	}()
	review.Reject("first", "stale handle")
}

func TestPendingApproval_RequiresAllApprovals(t *testing.T) {
	d, _ := New("body", nil)
	stage := Stage(d.RequestApproval(3))

	for i := 0; i < 3; i++ {
		pending, ok := stage.(*PendingApproval)
		if !ok {
			t.Fatalf("after %d approvals, stage = %T, want *PendingApproval", i, stage)
		}
		if want := 3 - i; pending.Remaining() != want {
			t.Errorf("Remaining() = %d, want %d", pending.Remaining(), want)
		}
		stage = pending.Approve("reviewer")
	}

	published, ok := stage.(*Published)
	if !ok {
		t.Fatalf("after 3 approvals, stage = %T, want *Published", stage)
	}
	if published.Content() != "body" {
		t.Errorf("Content() = %q, want %q", published.Content(), "body")
	}
}

func TestPendingApproval_RejectResetsCount(t *testing.T) {
	d, _ := New("body", nil)
	pending := d.RequestApproval(2)
	next, ok := pending.Approve("a").(*PendingApproval)
	if !ok {
		t.Fatal("one of two approvals should not publish")
	}

	draft := next.Reject("b", "redo")
	if draft.Meta()[MetaApprovalsGot] != "0" {
		t.Errorf("Meta()[approvals_got] = %q, want %q", draft.Meta()[MetaApprovalsGot], "0")
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name     string
		stage    string
		wantType string
		wantErr  error
	}{
		{"draft", StageDraft, "*document.Draft", nil},
		{"in review", StageInReview, "*document.PendingReview", nil},
		{"second review", StageSecondReview, "*document.PendingSecondReview", nil},
		{"published", StagePublished, "*document.Published", nil},
		{"unknown", "LIMBO", "", ErrUnknownStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := Restore(tt.stage, "body", nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Restore() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if stage.StageName() != tt.stage {
				t.Errorf("StageName() = %q, want %q", stage.StageName(), tt.stage)
			}
		})
	}
}

func TestRestore_RejectsEmptyBody(t *testing.T) {
	_, err := Restore(StageDraft, "", nil)
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("Restore() error = %v, want ErrEmptyBody", err)
	}
}

func TestRestoreApproval_ClampsCounters(t *testing.T) {
	pending, err := RestoreApproval("body", nil, 3, 5)
	if err != nil {
		t.Fatalf("RestoreApproval() error = %v", err)
	}
	// A persisted count at or past the requirement would otherwise publish
	// without a final Approve call.
	if pending.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", pending.Remaining())
	}
}
