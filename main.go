package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/poyuliu/returns-desk/agent/classifier"
	contractx "github.com/poyuliu/returns-desk/agent/contract"
	"github.com/poyuliu/returns-desk/agent/coordinator"
	promptx "github.com/poyuliu/returns-desk/agent/prompt"
	"github.com/poyuliu/returns-desk/agent/report"
	"github.com/poyuliu/returns-desk/agent/retrieval"
	storex "github.com/poyuliu/returns-desk/agent/store"
	configx "github.com/poyuliu/returns-desk/pkg/config"
	_ "github.com/poyuliu/returns-desk/pkg/logger/autoload"
	openrouterx "github.com/poyuliu/returns-desk/pkg/openrouter"
	serverx "github.com/poyuliu/returns-desk/server"
)

type AppConfig struct {
	Addr       string `split_words:"true" default:":8080"`
	SampleCSV  string `envconfig:"SAMPLE_CSV" split_words:"true" default:"sample.csv"`
	ReportPath string `split_words:"true" default:"returns_report.xlsx"`
}

var promptFlag = flag.String("prompt", "", "run a single prompt and exit")

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	dbCfg := configx.MustNew[storex.Config]("DB")
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")

	db, err := storex.Open(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := storex.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	retriever := retrieval.New(db)
	prompts := promptx.LoadPromptSet()

	var (
		cls      contractx.Classifier = classifier.NewRules()
		insights report.InsightGenerator
	)
	if openRouterCfg.Enabled() {
		chatModel, err := openRouterCfg.New(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("create chat model")
		}
		llmCls, err := classifier.NewLLM(ctx, chatModel, prompts.Classifier)
		if err != nil {
			log.Fatal().Err(err).Msg("create llm classifier")
		}
		cls = classifier.WithFallback(llmCls, classifier.NewRules())
		insights = report.NewLLMInsights(openrouterx.NewClient(*openRouterCfg), openRouterCfg.Model, prompts.Findings)
		log.Info().Str("model", openRouterCfg.Model).Msg("model-backed classifier and findings enabled")
	} else {
		insights = report.Heuristic{}
		log.Info().Msg("no model configured, using rule classifier and heuristic findings")
	}

	reporter := report.New(insights, appCfg.ReportPath)

	coord, err := coordinator.New(cls, retriever, reporter)
	if err != nil {
		log.Fatal().Err(err).Msg("create coordinator")
	}

	seedIfEmpty(ctx, retriever, appCfg.SampleCSV)

	if *promptFlag != "" {
		runOnce(ctx, coord, *promptFlag)
		return
	}

	srv := serverx.New(coord)
	log.Info().Str("addr", appCfg.Addr).Msg("returns desk listening")
	if err := http.ListenAndServe(appCfg.Addr, srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}

// seedIfEmpty loads the sample dataset on first start so query and report
// prompts have something to work with.
func seedIfEmpty(ctx context.Context, retriever contractx.Retriever, samplePath string) {
	count, err := retriever.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("count returns for seeding")
		return
	}
	if count > 0 {
		log.Info().Int("count", count).Msg("database already populated, skipping seed import")
		return
	}
	if _, err := os.Stat(samplePath); err != nil {
		log.Info().Str("path", samplePath).Msg("no sample csv found, starting empty")
		return
	}

	n, err := retriever.ImportCSV(ctx, samplePath)
	if err != nil {
		log.Warn().Err(err).Str("path", samplePath).Msg("seed import failed")
		return
	}
	log.Info().Int("rows", n).Str("path", samplePath).Msg("seeded database from sample csv")
}

func runOnce(ctx context.Context, coord *coordinator.Coordinator, prompt string) {
	result, err := coord.Process(ctx, prompt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
