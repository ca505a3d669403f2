// honeytrap is the scam-engagement honeypot service. It receives scammer
// messages over HTTP, runs the layered detection pipeline, replies in a
// believable victim persona and reports collected intelligence to the
// configured callback once an engagement completes.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/decoynet/honeytrap/pkg/agent"
	"github.com/decoynet/honeytrap/pkg/config"
	"github.com/decoynet/honeytrap/pkg/detector"
	"github.com/decoynet/honeytrap/pkg/llm"
	"github.com/decoynet/honeytrap/pkg/ml"
	"github.com/decoynet/honeytrap/pkg/report"
	"github.com/decoynet/honeytrap/pkg/rules"
	"github.com/decoynet/honeytrap/pkg/server"
	"github.com/decoynet/honeytrap/pkg/session"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("[Startup] loaded .env")
	}

	cfg := config.NewDefaultConfig()
	log.Printf("[Startup] honeytrap %s, llm=%s", config.Version, cfg.LLMProvider)

	if cfg.ConfigDir != "" {
		if err := rules.LoadCatalogConfig(cfg.ConfigDir); err != nil {
			log.Fatalf("[Startup] bad rule catalog override: %v", err)
		}
	}

	embedder := ml.NewEmbedder(cfg.OnnxModelPath, cfg.OnnxLibraryPath)
	seeds := ml.NewSeedStoreFromConfig(context.Background(), cfg.ConfigDir, embedder)
	scorer := ml.NewScorer(seeds)
	ml.LogModelSummary()

	var judge llm.Judge = llm.HeuristicJudge{}
	var replier llm.Replier
	if cfg.HasLLM() {
		client := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.LLMTimeout)
		judge = llm.NewGroqJudge(client)
		replier = llm.NewGroqReplier(client)
		log.Printf("[Startup] groq judge and replier active (model %s)", cfg.GroqModel)
	} else {
		log.Println("[Startup] no LLM configured, heuristic judge and template replies")
	}

	registry := session.NewRegistry()
	det := detector.New(scorer, judge)
	ag := agent.New(replier, cfg.MaxTurns)
	dispatcher := report.NewDispatcher(cfg.ReportURL, cfg.ReportTimeout)

	srv := server.New(cfg, registry, det, ag, dispatcher)
	if err := srv.Listen(); err != nil {
		log.Fatalf("[Startup] server exited: %v", err)
	}
}
