package slackbot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recogstats/internal/domain"

	"github.com/slack-go/slack"
)

type fakeUploader struct {
	params []slack.UploadFileV2Parameters
	err    error
}

func (f *fakeUploader) UploadFileV2Context(_ context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &slack.FileSummary{ID: "F1", Title: params.Title}, nil
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anup-statistics.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestPublishUploadsArtifact(t *testing.T) {
	up := &fakeUploader{}
	p := &Publisher{api: up, channelID: "C123"}
	res := domain.OrgResult{
		OrgName:      "anup",
		ArtifactPath: writeArtifact(t),
		LastModified: "2026-10-18 12:00:00",
		Summary:      domain.StatsSummary{Total: 12, Active: 5, ImageURLCount: 3, MissingEndDateCount: 4},
	}

	if err := p.Publish(context.Background(), res); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(up.params) != 1 {
		t.Fatalf("expected one upload, got %d", len(up.params))
	}
	got := up.params[0]
	if got.Channel != "C123" || got.Filename != "anup-statistics.png" || got.FileSize != len("png-bytes") {
		t.Fatalf("unexpected upload params: %+v", got)
	}
	if !strings.Contains(got.InitialComment, "total=12 active=5") || !strings.Contains(got.InitialComment, "Last modified: 2026-10-18 12:00:00") {
		t.Fatalf("unexpected comment: %q", got.InitialComment)
	}
	if strings.Contains(got.InitialComment, "invalid_dates") {
		t.Fatalf("invalid_dates must be omitted when zero: %q", got.InitialComment)
	}
}

func TestPublishErrors(t *testing.T) {
	p := &Publisher{api: &fakeUploader{err: errors.New("not_in_channel")}, channelID: "C123"}
	if err := p.Publish(context.Background(), domain.OrgResult{OrgName: "anup", ArtifactPath: writeArtifact(t)}); err == nil {
		t.Fatal("expected upload error")
	}
	if err := p.Publish(context.Background(), domain.OrgResult{OrgName: "anup", ArtifactPath: "/nonexistent/x.png"}); err == nil {
		t.Fatal("expected stat error for missing artifact")
	}
}

func TestPublishUsesConfiguredMarker(t *testing.T) {
	up := &fakeUploader{}
	p := &Publisher{api: up, channelID: "C123", orgMarker: "team-"}
	if err := p.Publish(context.Background(), domain.OrgResult{OrgName: "anup", ArtifactPath: writeArtifact(t)}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	got := up.params[0]
	if got.Title != "Statistics for team-anup" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if !strings.HasPrefix(got.InitialComment, "Recognition statistics for team-anup:") || strings.Contains(got.InitialComment, "org-") {
		t.Fatalf("unexpected comment: %q", got.InitialComment)
	}
}
