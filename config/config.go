// Package config loads the YAML settings a shuffle-round deployment needs
// to bootstrap: the peer roster, the round identifiers, and the HTTP
// surface's listen and timeout settings. Values come from a file, are
// overridable by flags at the call site, and fall back to DefaultConfig
// where unset.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/flashbots/shuffleround/group"
	"github.com/flashbots/shuffleround/wire"
)

// RosterEntry is one peer's directory entry: a stable id and its
// hex-encoded long-term Ed25519 verification key.
type RosterEntry struct {
	ID         string `yaml:"id"`
	SigningKey string `yaml:"signing_key"`
}

// Config is the full set of settings a shuffledemo instance reads from
// its YAML file.
type Config struct {
	// ListenAddr is the address the read-only HTTP status surface binds.
	ListenAddr string `yaml:"listen_addr"`

	// SessionID and RoundID identify the round instance; both are
	// hex-encoded on disk and parsed into wire.RoundID at load time.
	SessionID string `yaml:"session_id"`
	RoundID   string `yaml:"round_id"`

	// BlockSize is the fixed-size cleartext block every peer submits.
	BlockSize uint32 `yaml:"block_size"`

	// Roster lists every peer in ring order; roster order is group
	// index and ring order both.
	Roster []RosterEntry `yaml:"roster"`

	// LocalID selects which roster entry this process plays.
	LocalID string `yaml:"local_id"`

	// SigningKey is this process's hex-encoded Ed25519 private key. If
	// empty, a key is generated at startup and the process's roster
	// entry must have been populated out of band.
	SigningKey string `yaml:"signing_key"`

	// DrainDuration is how long the HTTP surface waits after /drain
	// before the caller should stop routing it traffic.
	DrainDuration time.Duration `yaml:"drain_duration"`

	// GracefulShutdownDuration bounds how long in-flight requests get
	// to finish during shutdown.
	GracefulShutdownDuration time.Duration `yaml:"graceful_shutdown_duration"`

	// ReadTimeout and WriteTimeout bound the HTTP surface's request
	// lifecycle.
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Postgres, if non-empty, is a libpq connection string enabling the
	// audit store. Round outcomes go unaudited when empty.
	Postgres string `yaml:"postgres"`
}

// DefaultConfig returns the baseline settings a config file's contents
// are layered on top of.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:               ":8090",
		BlockSize:                512,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              10 * time.Second,
		WriteTimeout:             10 * time.Second,
	}
}

// LoadConfig reads and parses a YAML config file, layering it over
// DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Group builds the round's Group directory from the roster.
func (c *Config) Group() (*group.StaticGroup, error) {
	members := make([]group.Member, len(c.Roster))
	for i, entry := range c.Roster {
		key, err := crypto.NewSigningPublicKeyFromString(entry.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("config: roster entry %d (%s): signing key: %w", i, entry.ID, err)
		}
		if !key.Valid() {
			return nil, fmt.Errorf("config: roster entry %d (%s): signing key has the wrong length", i, entry.ID)
		}
		members[i] = group.Member{ID: group.ID(entry.ID), Key: key}
	}

	g, err := group.NewStaticGroup(members)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return g, nil
}

// SigningKeyPair parses the process's own Ed25519 private key, generating one
// when the config leaves it blank.
func (c *Config) SigningKeyPair() (crypto.SigningPublicKey, crypto.SigningPrivateKey, error) {
	if c.SigningKey == "" {
		return crypto.GenerateSigningKeyPair()
	}

	keyBytes, err := hex.DecodeString(c.SigningKey)
	if err != nil {
		return nil, nil, fmt.Errorf("config: signing key: %w", err)
	}
	priv := crypto.NewSigningPrivateKeyFromBytes(keyBytes)
	pub, err := priv.PublicKey()
	if err != nil {
		return nil, nil, fmt.Errorf("config: signing key: %w", err)
	}
	return pub, priv, nil
}

// RoundIdentifiers parses the configured session and round ids, applying
// the wire length convention; either may be left to fall back to a fixed
// zero-filled identifier when a standalone run has no coordinator to
// assign one.
func (c *Config) RoundIdentifiers() (sessionID, roundID wire.RoundID, err error) {
	sessionID, err = parseRoundID(c.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("config: session_id: %w", err)
	}
	roundID, err = parseRoundID(c.RoundID)
	if err != nil {
		return nil, nil, fmt.Errorf("config: round_id: %w", err)
	}
	return sessionID, roundID, nil
}

// parseRoundID hex-decodes a round/session identifier, falling back to a
// fixed all-zero 16-byte identifier when left blank.
func parseRoundID(s string) (wire.RoundID, error) {
	if s == "" {
		return wire.RoundID(make([]byte, 16)), nil
	}
	return hex.DecodeString(s)
}

// Validate checks the settings that must hold before a round can be
// constructed from this config: a roster of at least two peers, a
// local_id present in that roster, and a positive block size.
func (c *Config) Validate() error {
	if len(c.Roster) < 2 {
		return fmt.Errorf("config: roster needs at least 2 peers, got %d", len(c.Roster))
	}
	if c.BlockSize == 0 {
		return fmt.Errorf("config: block_size must be positive")
	}
	if c.LocalID == "" {
		return fmt.Errorf("config: local_id is required")
	}
	found := false
	for _, entry := range c.Roster {
		if entry.ID == c.LocalID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: local_id %q is not in the roster", c.LocalID)
	}
	return nil
}
