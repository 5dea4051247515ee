package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/fetch"
	"github.com/cryptogamefiverse/nftdash/internal/http"
	"github.com/cryptogamefiverse/nftdash/internal/logging"
	"github.com/cryptogamefiverse/nftdash/internal/opensea"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// session bundles what every data command needs: the resolved config, an
// event bus, the marketplace client and an aggregator over it.
type session struct {
	cfg        *config.Config
	bus        *events.EventBus
	client     *opensea.Client
	aggregator *fetch.Aggregator
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if apiBaseURL != "" {
		cfg.BaseURL = apiBaseURL
	}
	if collections != "" {
		cfg.Collections = config.ParseCollections(collections)
	}

	key, source := config.ResolveAPIKeySource(apiKey, cfg)
	cfg.APIKey = key
	if source != "" {
		GetLogger().Debug().
			Str("source", source).
			Str("key", config.MaskAPIKey(key)).
			Msg("Using API key")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !verbose && !debug {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logging.SetGlobalLevel(level)
	}

	if http.NeedsProxyPassword(cfg) {
		password, err := promptProxyPassword(cfg.ProxyUser)
		if err != nil {
			return nil, err
		}
		cfg.ProxyPassword = password
	}

	return cfg, nil
}

// newSession builds the fetch pipeline on bus. Install the command's logger
// first: the client and aggregator capture it.
func newSession(cfg *config.Config, bus *events.EventBus) (*session, error) {
	client, err := opensea.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSea client: %w", err)
	}

	agg := fetch.NewAggregator(client,
		fetch.WithEventBus(bus),
		fetch.WithMaxConcurrent(cfg.MaxConcurrent),
		fetch.WithLogger(GetLogger().Zerolog()),
	)

	return &session{cfg: cfg, bus: bus, client: client, aggregator: agg}, nil
}

// initialView builds the starting table from the [view] section.
func (s *session) initialView() (table.View, error) {
	opts, err := s.cfg.ViewOptions()
	if err != nil {
		return table.View{}, err
	}
	return table.NewView(opts...), nil
}

func (s *session) Close() {
	s.bus.Close()
}

// promptProxyPassword asks for the proxy password without echo.
func promptProxyPassword(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("proxy password required: set proxy_password in the config or run interactively")
	}

	fmt.Fprintf(os.Stderr, "Proxy password for %s: ", user)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read proxy password: %w", err)
	}
	return strings.TrimSpace(string(password)), nil
}
