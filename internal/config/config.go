// Package config parses wqserver's CLI arguments, grounded on
// Seednode-partybox's cobra+viper command construction — generalized from
// partybox's all-flags interface to WordQuizzle's six mandatory positional
// arguments (spec.md §6 CLI row) plus two optional path flags.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the fully parsed and validated server configuration.
type Config struct {
	TCPPort           int
	UDPPort           int
	MatchDuration     time.Duration
	AcceptDuration    time.Duration
	NumWords          int
	WorkerThreads     int
	DictionaryPath    string
	DatabasePath      string
}

const (
	minPort    = 1024
	minWorkers = 4
)

func (c *Config) validate() error {
	if c.TCPPort <= minPort {
		return fmt.Errorf("tcpPort must be > %d, got %d", minPort, c.TCPPort)
	}
	if c.UDPPort <= minPort {
		return fmt.Errorf("udpPort must be > %d, got %d", minPort, c.UDPPort)
	}
	if c.TCPPort == c.UDPPort {
		return fmt.Errorf("tcpPort and udpPort must differ")
	}
	if c.MatchDuration <= 0 {
		return fmt.Errorf("matchMinutes must be positive")
	}
	if c.AcceptDuration <= 0 {
		return fmt.Errorf("invitationSeconds must be positive")
	}
	if c.NumWords <= 0 {
		return fmt.Errorf("numWords must be positive")
	}
	if c.WorkerThreads < minWorkers {
		return fmt.Errorf("workerThreads must be >= %d, got %d", minWorkers, c.WorkerThreads)
	}
	return nil
}

// Parse builds the cobra command that parses argv into a Config, matching
// spec.md §6's "unrecognised args → exit code 1 with a usage line."
// Environment variables are read through viper with the WQSERVER_ prefix,
// following partybox's PARTYBOX_ convention, for the two optional flags.
func Parse(argv []string) (*Config, error) {
	cfg := &Config{}

	v := viper.New()
	v.SetEnvPrefix("WQSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "wqserver <tcpPort> <udpPort> <matchMinutes> <invitationSeconds> <numWords> <workerThreads>",
		Short: "WordQuizzle match server",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			ints := make([]int, 6)
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("argument %d (%q) is not an integer", i+1, a)
				}
				ints[i] = n
			}
			cfg.TCPPort = ints[0]
			cfg.UDPPort = ints[1]
			cfg.MatchDuration = time.Duration(ints[2]) * time.Minute
			cfg.AcceptDuration = time.Duration(ints[3]) * time.Second
			cfg.NumWords = ints[4]
			cfg.WorkerThreads = ints[5]
			return cfg.validate()
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.DictionaryPath, "dict", "ItalianDictionary.txt", "dictionary file path (env: WQSERVER_DICT)")
	fs.StringVar(&cfg.DatabasePath, "db", "Database.json", "user database snapshot path (env: WQSERVER_DB)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = false
	cmd.SetArgs(argv)

	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	// Flags are bound into v above; pull the values back out so an
	// unset flag still picks up its WQSERVER_DICT/WQSERVER_DB override
	// (viper's precedence is explicit-flag > env > flag default).
	cfg.DictionaryPath = v.GetString("dict")
	cfg.DatabasePath = v.GetString("db")

	return cfg, nil
}
