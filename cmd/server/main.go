// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/analysis"
	"github.com/crewpact/creatorreach-backend/internal/controller"
	"github.com/crewpact/creatorreach-backend/internal/db"
	"github.com/crewpact/creatorreach-backend/internal/handler"
	"github.com/crewpact/creatorreach-backend/internal/queue"
	"github.com/crewpact/creatorreach-backend/internal/repository"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Init DB + migrations
	db.Init()
	db.Migrate()

	q := queue.NewInMemoryQueue()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	creatorRepo := &repository.CreatorRepository{DB: db.DB}
	outreachRepo := &repository.OutreachRepository{DB: db.DB}
	conversationRepo := &repository.ConversationRepository{DB: db.DB}
	negotiationRepo := &repository.NegotiationRepository{DB: db.DB}
	approvalRepo := &repository.ApprovalRepository{DB: db.DB}
	auditRepo := &repository.AuditRepository{DB: db.DB}
	outboundRepo := &repository.OutboundMessageRepository{DB: db.DB}

	queue.StartDeliverySubscriber(q, outboundRepo, queue.MockSender)

	analysisURL := os.Getenv("ANALYSIS_SERVICE_URL")
	if analysisURL == "" {
		analysisURL = "http://localhost:8090"
	}
	analyzer := analysis.NewClient(analysisURL, logger)

	negotiationService := &service.NegotiationService{
		Repo:   negotiationRepo,
		Audit:  auditRepo,
		Logger: logger,
	}

	approvalService := &service.ApprovalService{
		Approvals:     approvalRepo,
		Conversations: conversationRepo,
		Outreach:      outreachRepo,
		OutboundRepo:  outboundRepo,
		Audit:         auditRepo,
		Queue:         q,
		Logger:        logger,
	}

	conversationService := &service.ConversationService{
		Campaigns:     campaignRepo,
		Creators:      creatorRepo,
		Outreach:      outreachRepo,
		Conversations: conversationRepo,
		OutboundRepo:  outboundRepo,
		Audit:         auditRepo,
		Matcher:       service.NewThreadMatcher(outreachRepo, logger),
		Negotiation:   negotiationService,
		Approvals:     approvalService,
		Analyzer:      analyzer,
		Queue:         q,
		Logger:        logger,
	}

	outreachService := &service.OutreachService{
		CampaignRepo: campaignRepo,
		CreatorRepo:  creatorRepo,
		OutreachRepo: outreachRepo,
		OutboundRepo: outboundRepo,
		Audit:        auditRepo,
		Queue:        q,
		Logger:       logger,
	}

	analyticsService := &service.AnalyticsService{
		Audit:         auditRepo,
		Conversations: conversationRepo,
		Negotiations:  negotiationRepo,
		Approvals:     approvalRepo,
	}

	outreachController := &controller.OutreachController{
		OutreachService: outreachService,
	}

	conversationController := &controller.ConversationController{
		ConversationService: conversationService,
	}

	approvalHandler := &handler.ApprovalHandler{
		Approvals: approvalService,
		Analytics: analyticsService,
	}

	r := chi.NewRouter()

	// Campaign / outreach routes
	r.Post("/campaigns", outreachController.CreateCampaign)
	r.Get("/campaigns", outreachController.ListCampaigns)
	r.Get("/campaigns/{id}", outreachController.GetCampaignDetails)
	r.Put("/campaigns/{id}", outreachController.UpdateCampaign)
	r.Post("/campaigns/{id}/outreach", outreachController.SendOutreach)
	r.Post("/campaigns/{id}/personalized-preview", outreachController.PersonalizedPreview)
	r.Get("/campaigns/{id}/analytics", approvalHandler.AnalyticsHandler)
	r.Get("/campaigns/{id}/timeline", approvalHandler.TimelineHandler)

	// Conversation routes
	r.Post("/inbound", conversationController.HandleInbound)
	r.Post("/conversations/{id}/contract-sent", conversationController.MarkContractSent)

	// Approval routes
	r.Get("/approvals", approvalHandler.ListPendingHandler)
	r.Post("/approvals/{id}/resolve", approvalHandler.ResolveHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
