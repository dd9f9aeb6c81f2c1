package internal

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/goplus/xbuild/internal/config"
	"github.com/goplus/xbuild/internal/console"
	"github.com/goplus/xbuild/internal/env"
	"github.com/goplus/xbuild/internal/tools"
	"github.com/goplus/xbuild/pkgs/target"
)

var (
	configPath string
	toolsDir   string
	verbose    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "xbuild",
	Short: "xbuild prepares cross-compilation toolchains for Rust projects",
	Long: `xbuild resolves build targets, installs zig and the macOS SDK from
local archives, and manages Rust targets through rustup.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.FileName, "Path to the config file")
	flags.StringVar(&toolsDir, "tools-dir", "", "Tools directory (overrides the config file)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

// session is the state shared by subcommands.
type session struct {
	cfg      *config.Config
	log      *console.Logger
	resolver *target.Resolver
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	opts := []console.Option{console.WithVerbose(verbose)}
	if noColor {
		opts = append(opts, console.WithColor(false))
	}
	aliases := cfg.Aliases()
	return &session{
		cfg:      cfg,
		log:      console.New(cmd.OutOrStdout(), opts...),
		resolver: target.NewResolver(reg, aliases, config.DetectHost(aliases)),
	}, nil
}

func (s *session) host() target.Host {
	return s.resolver.Host()
}

// installer returns the tools installer, resolving the tools directory
// from --tools-dir, the config file, then the user cache dir.
func (s *session) installer() (*tools.Installer, error) {
	dir := toolsDir
	if dir == "" {
		dir = s.cfg.ToolsDir
	}
	if dir == "" {
		var err error
		if dir, err = env.ToolsDir(); err != nil {
			return nil, fmt.Errorf("failed to get tools dir: %w", err)
		}
	}
	return tools.New(dir, s.cfg, s.host(), tools.WithLogger(s.log))
}
