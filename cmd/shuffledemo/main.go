// Command shuffledemo runs a complete shuffle round for every peer in a
// roster within a single process, wiring them together over the
// in-process transport. It exists to exercise the full protocol end to
// end and to demonstrate the read-only HTTP status surface; a real
// deployment runs one peer per process against a network transport.
//
// # Configuration File
//
// Create a YAML file describing the roster and round:
//
//	listen_addr: ":8090"
//	block_size: 512
//	round_id: "00112233445566778899aabbccddeeff"
//	roster:
//	  - id: "peer-a"
//	    signing_key: "<hex ed25519 public key>"
//	  - id: "peer-b"
//	    signing_key: "<hex ed25519 public key>"
//
// # Usage
//
//	go run ./cmd/shuffledemo --config=demo.yaml --messages="hello,world"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/flashbots/shuffleround/audit"
	"github.com/flashbots/shuffleround/config"
	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/group"
	"github.com/flashbots/shuffleround/httpapi"
	"github.com/flashbots/shuffleround/localtransport"
	"github.com/flashbots/shuffleround/round"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP status surface listen address")
		messages   = flag.String("messages", "", "Comma-separated cleartext messages, one per roster entry in order")
		postgres   = flag.String("postgres", "", "libpq connection string; enables outcome auditing when set")
	)
	flag.Parse()

	isFlagSet := func(name string) bool {
		found := false
		flag.Visit(func(f *flag.Flag) {
			if f.Name == name {
				found = true
			}
		})
		return found
	}

	cfg, err := loadConfiguration(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if isFlagSet("addr") {
		cfg.ListenAddr = *addr
	}
	if isFlagSet("postgres") {
		cfg.Postgres = *postgres
	}

	if err := run(cfg, *messages); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfiguration(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.DefaultConfig(), nil
}

func run(cfg *config.Config, messages string) error {
	logger := slog.Default()

	if len(cfg.Roster) == 0 {
		return fmt.Errorf("shuffledemo: config has an empty roster; provide one in the YAML file")
	}

	sessionID, roundID, err := cfg.RoundIdentifiers()
	if err != nil {
		return err
	}

	var store *audit.Store
	if cfg.Postgres != "" {
		store, err = audit.NewStoreFromDSN(cfg.Postgres)
		if err != nil {
			return fmt.Errorf("shuffledemo: audit store: %w", err)
		}
		defer store.Close()
	}

	// shuffledemo plays every roster seat itself, so it generates each
	// peer's signing key on the fly rather than reading the roster's
	// configured keys: those describe a real multi-process deployment's
	// directory, not this single-process demonstration.
	type peer struct {
		id   group.ID
		priv crypto.SigningPrivateKey
		r    *round.Round
	}

	members := make([]group.Member, len(cfg.Roster))
	peers := make([]*peer, len(cfg.Roster))
	for i, entry := range cfg.Roster {
		pub, priv, err := crypto.GenerateSigningKeyPair()
		if err != nil {
			return fmt.Errorf("shuffledemo: generating signing key for %s: %w", entry.ID, err)
		}
		members[i] = group.Member{ID: group.ID(entry.ID), Key: pub}
		peers[i] = &peer{id: group.ID(entry.ID), priv: priv}
	}

	g, err := group.NewStaticGroup(members)
	if err != nil {
		return fmt.Errorf("shuffledemo: %w", err)
	}

	payloads := splitMessages(messages, g.Count())
	net := localtransport.NewNetwork()

	for i, p := range peers {
		p.r = round.New(g, p.id, sessionID, roundID, net, discardHost{}, p.priv, cfg.BlockSize, payloads[i], logger.With("peer", string(p.id)))
		net.Register(p.id, p.r)
	}

	provider := &currentRoundProvider{}
	provider.set(peers[0].r)

	httpSrv := httpapi.New(&httpapi.Config{
		ListenAddr:               cfg.ListenAddr,
		Log:                      logger,
		DrainDuration:            cfg.DrainDuration,
		GracefulShutdownDuration: cfg.GracefulShutdownDuration,
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
	}, &httpapi.StatusRegistrar{Provider: provider})
	httpSrv.RunInBackground()
	defer httpSrv.Shutdown()

	// Every peer's Start call cascades, synchronously and on this
	// goroutine, into ProcessData calls against every other peer over
	// net. Driving peers from separate goroutines here would race
	// unrelated peers' Start calls against each other's cascades, so
	// peers are started one at a time, matching the single-threaded
	// model round.Round assumes.
	for _, p := range peers {
		p.r.Start()
	}

	for _, p := range peers {
		logger.Info("shuffledemo: round finished",
			"peer", string(p.id),
			"state", p.r.State().String(),
			"successful", p.r.Successful(),
			"bad_members", p.r.BadMembers(),
		)
	}

	if store != nil {
		lead := peers[0].r
		if err := store.RecordOutcome(audit.Outcome{
			SessionID:  sessionID,
			RoundID:    roundID,
			FinalState: lead.State().String(),
			Successful: lead.Successful(),
			BadMembers: lead.BadMembers(),
		}); err != nil {
			logger.Error("shuffledemo: recording outcome", "err", err)
		}
	}

	waitForShutdownSignal()
	return nil
}

func waitForShutdownSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	<-ctx.Done()
}

func splitMessages(messages string, n int) [][]byte {
	payloads := make([][]byte, n)
	if messages == "" {
		return payloads
	}
	parts := strings.Split(messages, ",")
	for i := 0; i < n && i < len(parts); i++ {
		if parts[i] != "" {
			payloads[i] = []byte(parts[i])
		}
	}
	return payloads
}

// discardHost drops every delivered cleartext; shuffledemo only reports
// round-level outcomes, not recovered messages.
type discardHost struct{}

func (discardHost) PushData(cleartext []byte, r *round.Round) {}
func (discardHost) Close(reason string)                       {}

// currentRoundProvider is a thread-safe httpapi.RoundProvider.
type currentRoundProvider struct {
	mu sync.RWMutex
	r  *round.Round
}

func (p *currentRoundProvider) set(r *round.Round) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r = r
}

func (p *currentRoundProvider) Current() *round.Round {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.r
}
