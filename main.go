package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/luispater/wiselenium/browser/chrome"
	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/internal/config"
	"github.com/luispater/wiselenium/internal/fixture"
	"github.com/luispater/wiselenium/internal/runner"
	"github.com/luispater/wiselenium/page"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type LogFormatter struct {
}

func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	var newLog string
	if entry.HasCaller() {
		newLog = fmt.Sprintf("[%s] [%s] [%s:%d] %s\n", timestamp, entry.Level, path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	} else {
		newLog = fmt.Sprintf("[%s] [%s] %s\n", timestamp, entry.Level, entry.Message)
	}

	b.WriteString(newLog)
	return b.Bytes(), nil
}

func init() {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
	log.SetReportCaller(true)
	log.SetFormatter(&LogFormatter{})
}

var (
	configPath string
	cfg        *config.AppConfig
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "wiselenium",
		Short:         "Page object scenarios on Chrome",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load configuration error: %w", err)
			}
			if debug {
				cfg.Debug = true
			}
			if !cfg.Debug {
				log.SetLevel(log.InfoLevel)
			}
			page.ScreenshotDir = cfg.Screenshots.Dir
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCommand(), newServeCommand())
	return root
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Debugf("Received shutdown signal. Cleaning up...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func newRunCommand() *cobra.Command {
	var (
		parallel  int
		report    string
		baseURL   string
		headless  bool
		noFixture bool
	)
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenario files against Chrome",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("headless") {
				cfg.Headless = headless
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Parallel = parallel
			}
			if report != "" {
				cfg.Report = report
			}

			patterns := args
			if len(patterns) == 0 {
				patterns = cfg.Scenarios
			}
			scenarios, err := runner.LoadScenarios(patterns)
			if err != nil {
				return err
			}
			if len(scenarios) == 0 {
				return fmt.Errorf("no scenario files match %v", patterns)
			}

			ctx, cancel := signalContext()
			defer cancel()

			if baseURL == "" && !noFixture {
				server, errServer := fixture.NewServer(fixture.Config{Dir: cfg.Fixtures.Dir, Port: cfg.Fixtures.Port, Debug: cfg.Debug})
				if errServer != nil {
					return errServer
				}
				if err = server.Start(); err != nil {
					return err
				}
				defer stopFixtures(server)
				baseURL = server.BaseURL()
			}

			manager, err := chrome.NewManager(chrome.Options{
				ExecPath:     cfg.Browser.ExecPath,
				Headless:     cfg.Headless,
				WindowWidth:  cfg.Browser.WindowWidth,
				WindowHeight: cfg.Browser.WindowHeight,
				UserAgent:    cfg.Browser.UserAgent,
				UserDataDir:  cfg.Browser.UserDataDir,
				Args:         cfg.Browser.Args,
			})
			if err != nil {
				return fmt.Errorf("could not create browser manager: %w", err)
			}
			defer func() {
				log.Debugf("Closing browser manager...")
				if errClose := manager.Close(); errClose != nil {
					log.Debugf("Error closing browser manager: %v", errClose)
				}
			}()
			if err = manager.Launch(); err != nil {
				return fmt.Errorf("could not launch browser: %w", err)
			}

			r := runner.NewRunner(runner.Options{
				Timeout:       cfg.Wait.Timeout(),
				Interval:      cfg.Wait.Interval(),
				ScreenshotDir: cfg.Screenshots.Dir,
				BaseURL:       baseURL,
			})
			result, err := r.RunAll(ctx, scenarios, cfg.Parallel, chromeDrivers(manager, baseURL))
			if result != nil {
				if errSave := result.Save(cfg.Report); errSave != nil {
					log.Errorf("Error writing report %s: %v", cfg.Report, errSave)
				} else {
					log.Infof("Report written to %s", cfg.Report)
				}
			}
			if err != nil {
				return err
			}

			passed, failed := result.Totals()
			log.Infof("%d scenarios passed, %d failed", passed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, passed+failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "scenarios run at once, one tab each")
	cmd.Flags().StringVarP(&report, "report", "r", "", "report file (default from config)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL of relative scenario URLs (default: bundled fixture server)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run Chrome headless")
	cmd.Flags().BoolVar(&noFixture, "no-fixtures", false, "do not start the fixture server")
	return cmd
}

// chromeDrivers opens one tab per scenario, restoring and saving the
// configured session around it.
func chromeDrivers(manager *chrome.Manager, origin string) runner.DriverFactory {
	return func(ctx context.Context) (driver.Driver, func(), error) {
		d, err := manager.NewDriver("about:blank")
		if err != nil {
			return nil, nil, err
		}
		d.SetTimeout(cfg.Wait.Timeout())

		session := cfg.Browser.Session
		if session != "" {
			if err = d.LoadSession(session, origin); err != nil {
				log.Warnf("Error loading session %s: %v", session, err)
			}
		}
		release := func() {
			if session != "" {
				if errSave := d.SaveSession(session); errSave != nil {
					log.Debugf("Error saving session %s: %v", session, errSave)
				}
			}
			d.Close()
		}
		return d, release, nil
	}
}

func stopFixtures(server *fixture.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Debugf("Error stopping fixture server: %v", err)
	}
}

func newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Fixtures.Port = port
			}
			server, err := fixture.NewServer(fixture.Config{Dir: cfg.Fixtures.Dir, Port: cfg.Fixtures.Port, Debug: cfg.Debug})
			if err != nil {
				return err
			}
			if err = server.Start(); err != nil {
				return err
			}
			log.Infof("Serving fixture pages at %s%s", server.BaseURL(), fixture.PagesPath)

			ctx, cancel := signalContext()
			defer cancel()
			<-ctx.Done()

			stopFixtures(server)
			log.Debugf("Cleanup completed. Exiting...")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")
	return cmd
}
