package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/resonatefm/resonate/internal/api"
	"github.com/resonatefm/resonate/internal/cache"
	"github.com/resonatefm/resonate/internal/config"
	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/log"
	"github.com/resonatefm/resonate/internal/service"
	"github.com/resonatefm/resonate/internal/session"
	"github.com/resonatefm/resonate/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	var (
		showVersion  bool
		doSync       bool
		showProfile  bool
		historyCount int
		showFriends  bool
		doLogout     bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&doSync, "sync", false, "refresh profile, history, and stats from the server")
	flag.BoolVar(&showProfile, "profile", false, "show the cached profile")
	flag.IntVar(&historyCount, "history", 0, "show the N most recent cached plays")
	flag.BoolVar(&showFriends, "friends", false, "show the cached friends list")
	flag.BoolVar(&doLogout, "logout", false, "log out and clear cached data")
	flag.Parse()

	if showVersion {
		fmt.Printf("resonate %s\n", Version)
		return
	}

	if err := run(doSync, showProfile, historyCount, showFriends, doLogout); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(doSync, showProfile bool, historyCount int, showFriends, doLogout bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting resonate", "version", Version)

	if !cfg.IsLoggedIn() {
		fmt.Println("Not logged in. Add your account credentials to the config file first.")
		fmt.Println(dimStyle.Render("(account.id and account.session_token)"))
		return nil
	}

	st, err := store.Open(cfg.Cache.Dir, cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to open cache store: %w", err)
	}
	defer st.Close()

	cch := cache.New(st, logger)

	sess := session.New()
	sess.SetCredentials(cfg.Account.SessionToken)

	client := api.NewClient(cfg.API.BaseURL, sess, cfg.DeviceID, logger)
	svc := service.New(cch, client, logger)
	svc.Login(cfg.Account.ID, cfg.Account.Username, cfg.Account.Email)

	if doLogout {
		svc.Logout()
		sess.Clear()
		if err := config.ClearAccountConfig(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if doSync {
		if err := sync(ctx, svc); err != nil {
			return err
		}
	}
	if showProfile {
		printProfile(ctx, svc)
	}
	if historyCount > 0 {
		printHistory(ctx, svc, historyCount)
	}
	if showFriends {
		printFriends(ctx, svc)
	}

	logger.Info("shutting down")
	return nil
}

// sync force-refreshes every cached domain.
func sync(ctx context.Context, svc *service.Service) error {
	fmt.Println(headerStyle.Render("Syncing..."))

	steps := []struct {
		name string
		run  func() error
	}{
		{"profile", func() error { return svc.Profile(ctx, true, nil) }},
		{"history", func() error { return svc.History(ctx, true, nil) }},
		{"stats", func() error { return svc.Stats(ctx, true, service.StatsApply{}) }},
		{"pins", func() error { return svc.Pins(ctx, true, nil) }},
		{"friends", func() error { return svc.Friends(ctx, true, nil) }},
		{"milestones", func() error { return svc.Milestones(ctx, true, nil) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			if domain.IsCancelled(err) {
				return nil
			}
			return fmt.Errorf("sync %s: %w", step.name, err)
		}
		fmt.Printf("  %s %s\n", dimStyle.Render("✓"), step.name)
	}
	return nil
}

func printProfile(ctx context.Context, svc *service.Service) {
	err := svc.Profile(ctx, false, func(p domain.Profile) {
		fmt.Println(headerStyle.Render(p.Username))
		if p.Bio != "" {
			fmt.Println(p.Bio)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d plays · %d minutes", p.TotalPlays, p.TotalMinutes)))
	})
	if err != nil && !domain.IsCancelled(err) {
		fmt.Println(errorStyle.Render("profile unavailable: " + err.Error()))
	}
}

func printHistory(ctx context.Context, svc *service.Service, n int) {
	err := svc.History(ctx, false, func(plays []domain.SongPlay) {
		fmt.Println(headerStyle.Render("Recent plays"))
		start := len(plays) - n
		if start < 0 {
			start = 0
		}
		for i := len(plays) - 1; i >= start; i-- {
			p := plays[i]
			when := time.Unix(p.ListenedAt, 0).Format("Jan 2 15:04")
			fmt.Printf("  %s  %s — %s %s\n", dimStyle.Render(when), p.Name, p.ArtistLine(), dimStyle.Render(p.FormattedDuration()))
		}
	})
	if err != nil && !domain.IsCancelled(err) {
		fmt.Println(errorStyle.Render("history unavailable: " + err.Error()))
	}
}

func printFriends(ctx context.Context, svc *service.Service) {
	err := svc.Friends(ctx, false, func(fs []domain.Friend) {
		fmt.Println(headerStyle.Render("Friends"))
		for _, f := range fs {
			line := "  " + f.Username
			if f.Current != nil {
				line += dimStyle.Render(fmt.Sprintf("  ♪ %s — %s", f.Current.Name, f.Current.Artist))
			}
			fmt.Println(line)
		}
	})
	if err != nil && !domain.IsCancelled(err) {
		fmt.Println(errorStyle.Render("friends unavailable: " + err.Error()))
	}
}
