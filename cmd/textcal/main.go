package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"textcal/internal/calendar"
	"textcal/internal/capture"
	"textcal/internal/config"
	"textcal/internal/extract"
	appLog "textcal/internal/log"
	"textcal/internal/metrics"
	"textcal/internal/model"
	"textcal/internal/notify"
	"textcal/internal/ocr"
	"textcal/internal/provider"
	"textcal/internal/secrets"
	"textcal/internal/watch"
	"textcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	text       string
	file       string
	url        string
	parser     string
	calendar   string
	yes        bool
	watchMode  bool
	setKey     string
}

func main() {
	flags := parseFlags()

	if flags.setKey != "" {
		if err := storeKey(flags.setKey); err != nil {
			appLog.Error("failed to store API key", err, "provider", flags.setKey)
			os.Exit(1)
		}
		return
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.parser != "" {
		conf.Parser = flags.parser
		conf.Normalize()
	}

	appLog.Info("textcal starting",
		"parser", conf.Parser,
		"ocr", conf.OCR,
		"calendar_dir", conf.CalendarDir,
		"watch", flags.watchMode,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	pipeline := extract.NewPipeline()
	store := calendar.NewICSStore(conf.CalendarDir, conf.DefaultCalendar)
	committer := calendar.NewCommitter(store, notifierFor(conf))

	if flags.watchMode {
		os.Exit(runWatch(ctx, conf, flags, pipeline, committer))
	}
	os.Exit(runOnce(ctx, conf, flags, pipeline, committer))
}

// runOnce executes a single interactive extraction.
func runOnce(ctx context.Context, conf *config.Config, flags flagConfig, pipeline *extract.Pipeline, committer *calendar.Committer) int {
	source, err := selectSource(flags)
	if err != nil {
		appLog.Error("no input", err)
		return 1
	}

	rc, err := buildRunConfig(conf, flags.configPath, source)
	if err != nil {
		appLog.Error("configuration error", err)
		return 1
	}

	ev, err := pipeline.Run(ctx, rc)
	if err != nil {
		appLog.Error("extraction failed", err)
		return 1
	}
	if flags.calendar != "" {
		ev.CalendarID = flags.calendar
	}

	printEvent(ev)

	if !flags.yes && !confirm("Add this event?") {
		pipeline.Discard()
		fmt.Println("Discarded.")
		return 0
	}

	if err := committer.CreateEvent(ctx, ev); err != nil {
		pipeline.Discard()
		appLog.Error("commit failed", err)
		return 1
	}
	pipeline.Accept()
	fmt.Println("Event added.")
	return 0
}

// runWatch runs the inbox-scanning daemon with /health and /metrics.
func runWatch(ctx context.Context, conf *config.Config, flags flagConfig, pipeline *extract.Pipeline, committer *calendar.Committer) int {
	reg := metrics.NewRegistry()

	if conf.Listen != "" {
		go func() {
			if err := web.Start(ctx, conf.Listen, pipeline, reg); err != nil {
				appLog.Error("HTTP server stopped", err, "listen", conf.Listen)
			}
		}()
	}

	handler := func(ctx context.Context, path string) error {
		rc, err := buildRunConfig(conf, flags.configPath, capture.FileSource(path))
		if err != nil {
			return err
		}

		ev, err := pipeline.Run(ctx, rc)
		if err != nil {
			if errors.Is(err, extract.ErrBusy) {
				reg.TriggersDropped.Inc()
			} else {
				reg.ExtractionFailures.Inc()
			}
			return err
		}
		reg.Extractions.Inc()

		if !conf.AutoCommit {
			appLog.Info("auto_commit disabled; event discarded", "title", ev.Title, "path", path)
			pipeline.Discard()
			return nil
		}

		if err := committer.CreateEvent(ctx, ev); err != nil {
			reg.CommitFailures.Inc()
			pipeline.Discard()
			return err
		}
		reg.Commits.Inc()
		pipeline.Accept()
		return nil
	}

	w := watch.New(conf.InboxDir, conf.WatchCron, handler)
	if err := w.Start(ctx); err != nil {
		appLog.Error("watcher failed", err)
		return 1
	}
	return 0
}

// buildRunConfig snapshots configuration into per-run collaborators.
func buildRunConfig(conf *config.Config, configPath string, source capture.Source) (extract.RunConfig, error) {
	parser, err := buildParser(conf, configPath)
	if err != nil {
		return extract.RunConfig{}, err
	}

	return extract.RunConfig{
		Source:          source,
		Recognizer:      buildRecognizer(conf),
		Provider:        parser,
		PromptContext:   conf.PromptContext,
		DefaultDuration: time.Duration(conf.DefaultDurationMinutes) * time.Minute,
	}, nil
}

func buildParser(conf *config.Config, configPath string) (provider.Provider, error) {
	sec := secrets.NewStore("")

	switch conf.Parser {
	case config.ParserOllama:
		persist := func(mdl string) error {
			conf.OllamaModel = mdl
			return conf.Save(configPath)
		}
		return provider.NewOllama(conf.OllamaHost, conf.OllamaModel, persist), nil

	case config.ParserOpenAI:
		key, _ := sec.Get("openai")
		return provider.NewOpenAI(conf.OpenAIModel, key), nil

	case config.ParserAnthropic:
		key, _ := sec.Get("anthropic")
		return provider.NewAnthropic(conf.AnthropicModel, key), nil
	}
	return nil, fmt.Errorf("unknown parser provider %q", conf.Parser)
}

func buildRecognizer(conf *config.Config) ocr.Recognizer {
	if conf.OCR == config.OCRVision {
		return ocr.NewVision(conf.OllamaHost, conf.VisionModel)
	}
	return ocr.NewTesseract(conf.OCRLanguages)
}

func notifierFor(conf *config.Config) notify.Notifier {
	if conf.Notify {
		return notify.NewNotifySend("")
	}
	return notify.Noop{}
}

// selectSource picks the input source from flags, falling back to stdin.
func selectSource(flags flagConfig) (capture.Source, error) {
	switch {
	case flags.text != "":
		return capture.TextSource(flags.text), nil
	case flags.file != "":
		return capture.FileSource(flags.file), nil
	case flags.url != "":
		return capture.URLSource{URL: flags.url}, nil
	}

	// Piped stdin as a last resort.
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return capture.TextSource(string(data)), nil
	}
	return nil, errors.New("provide -text, -file, -url or pipe text on stdin")
}

func printEvent(ev *model.Event) {
	fmt.Println()
	fmt.Println("  Title:    ", ev.Title)
	if ev.AllDay {
		fmt.Println("  Date:     ", ev.Start.Format("2006-01-02"), "(all day)")
	} else {
		fmt.Println("  Start:    ", ev.Start.Format("2006-01-02 15:04"))
		fmt.Println("  End:      ", ev.EffectiveEnd().Format("2006-01-02 15:04"))
	}
	if ev.Location != "" {
		fmt.Println("  Location: ", ev.Location)
	}
	if ev.Notes != "" {
		fmt.Println("  Notes:    ", ev.Notes)
	}
	if ev.Recurrence != "" {
		fmt.Println("  Repeats:  ", ev.Recurrence)
	}
	fmt.Println()
}

func confirm(q string) bool {
	fmt.Printf("%s [y/N] ", q)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// storeKey reads a credential from stdin and saves it for the given
// provider name.
func storeKey(providerName string) error {
	fmt.Printf("API key for %s: ", providerName)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return err
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return errors.New("empty key")
	}
	if err := secrets.NewStore("").Set(providerName, key); err != nil {
		return err
	}
	fmt.Println("Stored.")
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath(), "Path to config file")
	flag.StringVar(&cfg.text, "text", "", "Extract an event from this text")
	flag.StringVar(&cfg.file, "file", "", "Extract an event from a text or image file")
	flag.StringVar(&cfg.url, "url", "", "Capture this web page and extract an event from it")
	flag.StringVar(&cfg.parser, "parser", "", "Override the parsing provider (ollama, openai, anthropic)")
	flag.StringVar(&cfg.calendar, "calendar", "", "Target calendar for the committed event")
	flag.BoolVar(&cfg.yes, "yes", false, "Commit without asking for confirmation")
	flag.BoolVar(&cfg.watchMode, "watch", false, "Run as a daemon scanning the inbox directory")
	flag.StringVar(&cfg.setKey, "set-key", "", "Store an API key for the named provider and exit")

	flag.Parse()

	return cfg
}
