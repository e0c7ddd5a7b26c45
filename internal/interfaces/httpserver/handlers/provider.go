package handlers

import (
	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/config"
	contentdomain "github.com/agutorres/lineup-server/internal/domain/content"
	engagementdomain "github.com/agutorres/lineup-server/internal/domain/engagement"
	videodomain "github.com/agutorres/lineup-server/internal/domain/video"
)

// Provider wires HTTP handlers.
type Provider struct {
	Video      *VideoHandler
	Webhook    *WebhookHandler
	Content    *ContentHandler
	Engagement *EngagementHandler
}

func NewProvider(
	cfg *config.Config,
	videoService *videodomain.Service,
	detailService *videodomain.DetailService,
	poller *videodomain.StatusPoller,
	contentService *contentdomain.Service,
	engagementService *engagementdomain.Service,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Video:      NewVideoHandler(cfg, videoService, detailService, poller, log),
		Webhook:    NewWebhookHandler(cfg, videoService, log),
		Content:    NewContentHandler(contentService, log),
		Engagement: NewEngagementHandler(engagementService, log),
	}
}
