package controllers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hevruta/hevruta/services/airtable"
	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/types"
)

type fakeMirror struct {
	rows        []airtable.Record
	creates     int
	updates     int
	lastFields  map[string]interface{}
	failListing bool
}

func (f *fakeMirror) ListRecords(ctx context.Context, filterByFormula string, pageSize int) ([]airtable.Record, error) {
	if f.failListing {
		return nil, apperrors.External("airtable list failed", errors.New("503"))
	}
	return f.rows, nil
}

func (f *fakeMirror) CreateRecord(ctx context.Context, fields map[string]interface{}) (*airtable.Record, error) {
	f.creates++
	f.lastFields = fields
	rec := airtable.Record{ID: fmt.Sprintf("rec%d", f.creates), Fields: fields}
	f.rows = append(f.rows, rec)
	return &rec, nil
}

func (f *fakeMirror) UpdateRecord(ctx context.Context, recordID string, fields map[string]interface{}) (*airtable.Record, error) {
	f.updates++
	f.lastFields = fields
	return &airtable.Record{ID: recordID, Fields: fields}, nil
}

func newFeedbackTestController(t *testing.T) (*FeedbackController, *fakeMirror) {
	db := setupTestDB(t)
	mirror := &fakeMirror{}
	ctrl := NewFeedbackController(dao.NewFeedbackDAO(db), mirror)
	return ctrl, mirror
}

func TestSubmitDislikeWithCommentMirrorsRow(t *testing.T) {
	ctrl, mirror := newFeedbackTestController(t)
	ctx := context.Background()

	fb, err := ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{
		RunID:    "run_1",
		ThreadID: "thread_1",
		Rating:   models.RatingDislike,
		Comment:  "התשובה שגויה",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if fb.Rating != models.RatingDislike {
		t.Errorf("expected dislike, got %q", fb.Rating)
	}
	if mirror.creates != 1 {
		t.Fatalf("expected one mirror create, got %d", mirror.creates)
	}
	if mirror.lastFields["Comment"] != "התשובה שגויה" {
		t.Errorf("mirror row missing comment: %v", mirror.lastFields)
	}
	if mirror.lastFields["RunID"] != "run_1" {
		t.Errorf("mirror row missing run id: %v", mirror.lastFields)
	}
}

func TestResubmitUpdatesMirrorRow(t *testing.T) {
	ctrl, mirror := newFeedbackTestController(t)
	ctx := context.Background()

	if _, err := ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{
		RunID:  "run_2",
		Rating: models.RatingLike,
	}); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	fb, err := ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{
		RunID:   "run_2",
		Rating:  models.RatingDislike,
		Comment: "בעצם לא",
	})
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	if fb.Rating != models.RatingDislike || fb.Comment != "בעצם לא" {
		t.Errorf("expected updated feedback, got %+v", fb)
	}
	if mirror.creates != 1 || mirror.updates != 1 {
		t.Errorf("expected create then update, got creates=%d updates=%d", mirror.creates, mirror.updates)
	}
	if mirror.lastFields["Comment"] != "בעצם לא" {
		t.Errorf("mirror update missing new comment: %v", mirror.lastFields)
	}
}

func TestSubmitValidation(t *testing.T) {
	ctrl, _ := newFeedbackTestController(t)
	ctx := context.Background()

	_, err := ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{Rating: models.RatingLike})
	var ae *apperrors.AppError
	if !errors.As(err, &ae) || ae.Kind != apperrors.KindValidation {
		t.Errorf("expected validation error for missing run_id, got %v", err)
	}

	_, err = ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{RunID: "run_3", Rating: "meh"})
	if !errors.As(err, &ae) || ae.Kind != apperrors.KindValidation {
		t.Errorf("expected validation error for bad rating, got %v", err)
	}
}

func TestMirrorFailureKeepsLocalRow(t *testing.T) {
	ctrl, mirror := newFeedbackTestController(t)
	mirror.failListing = true
	ctx := context.Background()

	fb, err := ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{
		RunID:  "run_4",
		Rating: models.RatingLike,
	})
	if err == nil {
		t.Fatal("expected external error when the mirror is down")
	}
	if apperrors.Status(err) != 502 {
		t.Errorf("expected 502 mapping, got %d", apperrors.Status(err))
	}
	if fb == nil {
		t.Fatal("local row should still be returned")
	}

	// The local row stands and is readable by its reviewer.
	got, err := ctrl.Get(ctx, "owner@example.com", models.RoleUser, "run_4")
	if err != nil || got == nil {
		t.Fatalf("local feedback lost after mirror failure: %v", err)
	}
}

func TestGetFeedbackVisibility(t *testing.T) {
	ctrl, _ := newFeedbackTestController(t)
	ctx := context.Background()

	if _, err := ctrl.Submit(ctx, "owner@example.com", types.FeedbackRequest{
		RunID:  "run_5",
		Rating: models.RatingLike,
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := ctrl.Get(ctx, "owner@example.com", models.RoleUser, "run_5"); err != nil {
		t.Errorf("reviewer should read own feedback: %v", err)
	}
	if _, err := ctrl.Get(ctx, "admin@example.com", models.RoleAdmin, "run_5"); err != nil {
		t.Errorf("admin should read any feedback: %v", err)
	}
	_, err := ctrl.Get(ctx, "stranger@example.com", models.RoleUser, "run_5")
	var ae *apperrors.AppError
	if !errors.As(err, &ae) || ae.Kind != apperrors.KindNotFound {
		t.Errorf("stranger must get not-found, got %v", err)
	}
}
