package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"shorts-pipeline/config"
	"shorts-pipeline/extproc"
	"shorts-pipeline/images"
	"shorts-pipeline/llm"
	"shorts-pipeline/pipeline"
	"shorts-pipeline/research"
	"shorts-pipeline/types"
	"shorts-pipeline/upload"
)

// Exit codes: 0 video produced, 1 a stage failed, 2 bad invocation.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// .env is local dev convenience; CI passes real env vars.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("shorts-pipeline", flag.ContinueOnError)
	var (
		topic      = fs.String("topic", "", "video topic to produce")
		output     = fs.String("output", "", "output root directory (overrides config)")
		configPath = fs.String("config", "config.yaml", "config file path")
		fast       = fs.Bool("fast", false, "lower image quality for quick iteration")
		force      = fs.Bool("force", false, "re-run every stage even when outputs exist")
		resumeDir  = fs.String("resume", "", "existing run directory to resume")
		suggest    = fs.Bool("suggest", false, "print trending topic suggestions and exit")
		uploadDir  = fs.String("upload", "", "run directory whose video to upload, then exit")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config: %v", err)
		return exitUsage
	}

	ctx := context.Background()

	switch {
	case *suggest:
		return runSuggest(ctx, cfg)
	case *uploadDir != "":
		return runUpload(ctx, cfg, *uploadDir)
	}

	if *topic == "" && *resumeDir == "" {
		fmt.Fprintln(os.Stderr, "need -topic (or -resume DIR, -suggest, -upload DIR)")
		fs.Usage()
		return exitUsage
	}

	var store *pipeline.Store
	if *resumeDir != "" {
		store = pipeline.NewStore(*resumeDir)
		if *topic == "" {
			*topic = resumeTopic(store)
		}
		if *topic == "" {
			log.Printf("cannot recover topic from %s, pass -topic", *resumeDir)
			return exitUsage
		}
	} else {
		root := cfg.Paths.Output
		if *output != "" {
			root = *output
		}
		store = pipeline.NewStore(pipeline.RunDir(root, *topic, time.Now()))
	}
	if err := store.EnsureLayout(); err != nil {
		log.Printf("output dir: %v", err)
		return exitFail
	}

	orch := pipeline.NewOrchestrator(store, pipeline.Options{
		Topic:  *topic,
		Resume: !*force,
	})
	orch.SetStages(pipeline.BuildStages(cfg, store, pipeline.Deps{
		LLM:    llm.New(cfg.LLM),
		Images: images.New(cfg.Images, *fast),
		Runner: extproc.ExecRunner{},
		Warnf:  orch.Warnf,
	}, *topic))

	sum := orch.Execute(ctx)
	if sum.Status != pipeline.RunCompleted {
		return exitFail
	}
	log.Printf("🎬 Video ready: %s", store.Path(pipeline.ArtifactVideo))
	return exitOK
}

func runSuggest(ctx context.Context, cfg *config.Config) int {
	s, err := research.NewSuggester(cfg.Research)
	if err != nil {
		log.Printf("suggest: %v", err)
		return exitFail
	}
	suggestions, err := s.Run(ctx)
	if err != nil {
		log.Printf("suggest: %v", err)
		return exitFail
	}
	for i, sg := range suggestions {
		fmt.Printf("%2d. %s  (r/%s, %d points, %d comments)\n    %s\n",
			i+1, sg.Title, sg.Subreddit, sg.Score, sg.Comments, sg.Permalink)
	}
	return exitOK
}

func runUpload(ctx context.Context, cfg *config.Config, runDir string) int {
	store := pipeline.NewStore(runDir)
	videoFile := store.Path(pipeline.ArtifactVideo)
	if !store.Exists(pipeline.ArtifactVideo) {
		log.Printf("no video in %s, run the pipeline first", runDir)
		return exitUsage
	}

	var plan types.Plan
	if err := store.ReadJSON(pipeline.ArtifactPlan, &plan); err != nil {
		log.Printf("read plan: %v", err)
		return exitFail
	}

	meta := upload.MetadataFromPlan(&plan, cfg.Upload)
	id, url, err := upload.New(cfg.Upload).Run(ctx, videoFile, meta)
	if err != nil {
		log.Printf("upload: %v", err)
		return exitFail
	}
	if err := upload.WriteReceipt(runDir, id, url, meta.Title); err != nil {
		log.Printf("upload receipt: %v", err)
	}
	fmt.Println(url)
	return exitOK
}

// resumeTopic recovers the topic of an interrupted run from its
// artifacts.
func resumeTopic(store *pipeline.Store) string {
	var plan types.Plan
	if err := store.ReadJSON(pipeline.ArtifactPlan, &plan); err == nil && plan.Topic != "" {
		return plan.Topic
	}
	var sum pipeline.Summary
	if err := store.ReadJSON(pipeline.ArtifactSummary, &sum); err == nil {
		return sum.Topic
	}
	return ""
}
