package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidecue/sidecue/internal/assistant"
	"github.com/sidecue/sidecue/internal/config"
	"github.com/sidecue/sidecue/internal/memory"
	"github.com/sidecue/sidecue/internal/providers"
	"github.com/sidecue/sidecue/internal/recall"
	"github.com/sidecue/sidecue/internal/vocab"
)

func newRootCmd() *cobra.Command {
	var mode string
	var minutes int

	root := &cobra.Command{
		Use:   "sidecue",
		Short: "Live session assistant over a model fallback chain",
		Long: `sidecue answers transcribed speech, chat messages and screen captures
during a live session, keeping a bounded conversation memory for
follow-up context and topic recall.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), mode, minutes)
		},
	}
	root.Flags().StringVar(&mode, "mode", "", "skill mode to start a session in (e.g. dsa, system-design)")
	root.Flags().IntVar(&minutes, "minutes", 0, "session duration in minutes (overrides config)")

	root.AddCommand(newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration file location and contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return err
			}
			cfg, err := manager.Load()
			if err != nil {
				return err
			}
			fmt.Printf("config: %s\n", manager.GetConfigPath())
			if !manager.Exists() {
				fmt.Println("(not created yet; using environment variables only)")
				return nil
			}
			fmt.Printf("provider:        %s\n", cfg.Provider)
			fmt.Printf("model chain:     %s\n", cfg.ModelChain)
			fmt.Printf("session minutes: %d\n", cfg.SessionMinutes)
			fmt.Printf("skill modes:     %s\n", strings.Join(cfg.SkillModes, ", "))
			return nil
		},
	}
	return cmd
}

func runInteractive(ctx context.Context, startMode string, minutes int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	a, cleanup, err := prepareAssistant(logger, minutes)
	if err != nil {
		return err
	}
	defer cleanup()

	if startMode != "" {
		timer, err := a.StartSession(startMode)
		if err != nil {
			return err
		}
		fmt.Printf("session started (%s) %s\n", startMode, timer.Formatted)
	}

	fmt.Println(`commands: /start <mode>, /end, /mode <mode>, /followup on|off, /status, /recall <query>, /search <query>, /quit`)
	s := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !s.Scan() {
			break
		}
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}
		if strings.HasPrefix(line, "/") {
			runCommand(a, line)
			continue
		}

		printResponse(a.HandleChat(ctx, line))
	}
	return nil
}

func runCommand(a *assistant.Assistant, line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/start":
		timer, err := a.StartSession(arg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("session started %s\n", timer.Formatted)
	case "/end":
		summary := a.EndSession()
		fmt.Printf("session over: %s, %d events, topics: %s\n",
			summary.DurationHuman, summary.EventCount, strings.Join(summary.Topics, ", "))
	case "/mode":
		if err := a.SetSkillMode(arg); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("mode set to %s\n", arg)
	case "/followup":
		a.SetFollowUpEnabled(arg == "on")
		fmt.Printf("follow-up context: %s\n", arg)
	case "/status":
		snap := a.Status()
		fmt.Printf("%d events, %d topics, %d indexed, timer %s\n",
			snap.EventCount, len(snap.Topics), a.TranscriptDocCount(), snap.Timer.Formatted)
	case "/recall":
		for _, r := range a.Recall(arg) {
			fmt.Printf("[%s] %s\n", r.Topic, r.Snippet)
		}
	case "/search":
		hits, err := a.SearchTranscript(arg, 10)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, h := range hits {
			fmt.Printf("%.2f %s/%s %s\n", h.Score, h.Role, h.Action, h.EventID)
		}
	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

func printResponse(resp assistant.Response) {
	if !resp.Success {
		fmt.Printf("no answer: %s\n", resp.Error)
		return
	}
	if resp.PartA != "" {
		fmt.Printf("--- talking points ---\n%s\n", resp.PartA)
	}
	if resp.PartB != "" {
		fmt.Printf("--- detail ---\n%s\n", resp.PartB)
	} else {
		fmt.Println(resp.Text)
	}
	fmt.Printf("(%s, %s%s)\n",
		resp.Metadata.ModelUsed,
		resp.Metadata.ProcessingTime.Round(time.Millisecond),
		followUpTag(resp.Metadata.IsFollowUp))
}

func followUpTag(isFollowUp bool) string {
	if isFollowUp {
		return ", follow-up"
	}
	return ""
}

// prepareAssistant wires the runtime: config, provider chain, topic
// vocabulary, memory store and transcript index.
func prepareAssistant(logger *slog.Logger, minutes int) (*assistant.Assistant, func(), error) {
	cleanup := func() {}

	manager, err := config.NewManager()
	var userConfig *config.Config
	if err == nil {
		userConfig, err = manager.Load()
		if err != nil {
			logger.Warn("failed to load user config", "error", err)
			userConfig = &config.Config{}
		}
	} else {
		logger.Warn("failed to initialize config manager", "error", err)
		userConfig = &config.Config{}
	}
	applyConfigToEnv(userConfig)

	candidates, errs := providers.NewChainFromEnv()
	for _, e := range errs {
		logger.Warn("provider unavailable", "error", e)
	}
	if len(candidates) == 0 {
		logger.Warn("no providers configured; answers will use the canned fallback")
	}

	memCfg := memory.DefaultConfig()
	if minutes > 0 {
		memCfg.MaxSessionDuration = time.Duration(minutes) * time.Minute
	} else if userConfig.SessionMinutes > 0 {
		memCfg.MaxSessionDuration = time.Duration(userConfig.SessionMinutes) * time.Minute
	}
	if len(userConfig.SkillModes) > 0 {
		memCfg.SkillModes = userConfig.SkillModes
	}

	var matcher vocab.Matcher = vocab.Default()
	if userConfig.VocabFile != "" {
		watcher, werr := vocab.NewWatcher(userConfig.VocabFile, logger)
		if werr != nil {
			logger.Warn("custom vocabulary unavailable, using built-in", "error", werr)
		} else {
			matcher = watcher
			prev := cleanup
			cleanup = func() { watcher.Close(); prev() }
		}
	}

	store := memory.NewStore(memCfg, matcher, logger)
	store.SetOnSessionEnd(func(summary memory.Summary) {
		logger.Info("session ended",
			"mode", summary.SkillMode,
			"duration", summary.DurationHuman,
			"events", summary.EventCount)
	})

	index, err := recall.NewIndex()
	if err != nil {
		logger.Warn("transcript index unavailable", "error", err)
		index = nil
	} else {
		store.SetIndexer(index)
		prev := cleanup
		cleanup = func() { index.Close(); prev() }
	}

	a, err := assistant.New(assistant.Options{
		Store:      store,
		Candidates: candidates,
		Logger:     logger,
		SkillModes: memCfg.SkillModes,
		Transcript: index,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}
