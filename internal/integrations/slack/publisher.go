package slackbot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"recogstats/internal/domain"

	"github.com/slack-go/slack"
)

type fileUploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// Publisher uploads chart artifacts to one Slack channel.
type Publisher struct {
	api       fileUploader
	channelID string
	orgMarker string
}

func NewPublisher(botToken, channelID, orgMarker string) *Publisher {
	return &Publisher{api: slack.New(botToken), channelID: channelID, orgMarker: orgMarker}
}

func (p *Publisher) Publish(ctx context.Context, res domain.OrgResult) error {
	fi, err := os.Stat(res.ArtifactPath)
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}
	_, err = p.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           res.ArtifactPath,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(res.ArtifactPath),
		Channel:        p.channelID,
		Title:          fmt.Sprintf("Statistics for %s", domain.OrgSegment(res.OrgName, p.orgMarker)),
		InitialComment: summaryComment(res, p.orgMarker),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", res.ArtifactPath, err)
	}
	return nil
}

func summaryComment(res domain.OrgResult, orgMarker string) string {
	s := res.Summary
	msg := fmt.Sprintf("Recognition statistics for %s: total=%d active=%d custom_images=%d long_descriptions=%d missing_end_date=%d",
		domain.OrgSegment(res.OrgName, orgMarker), s.Total, s.Active, s.ImageURLCount, s.LongDescriptionCount, s.MissingEndDateCount)
	if s.InvalidDateCount > 0 {
		msg += fmt.Sprintf(" invalid_dates=%d", s.InvalidDateCount)
	}
	if res.LastModified != "" {
		msg += fmt.Sprintf("\nLast modified: %s UTC", res.LastModified)
	}
	return msg
}
