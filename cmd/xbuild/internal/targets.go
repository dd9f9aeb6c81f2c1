package internal

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/xbuild/pkgs/target"
)

var targetsJSON bool

var targetsCmd = &cobra.Command{
	Use:   "targets [spec...]",
	Short: "Resolve target specs",
	Long: `Targets expands specs into build targets. A spec is "native", "all",
a platform ("macos", "linux"), a target name or a target triple.
With no spec, the native target is resolved.`,
	RunE: runTargets,
}

var nativeCmd = &cobra.Command{
	Use:   "native",
	Short: "Print the native target",
	Args:  cobra.NoArgs,
	RunE:  runNative,
}

var errNoNative = errors.New("no registered target matches this host")

func init() {
	targetsCmd.Flags().BoolVar(&targetsJSON, "json", false, "Print targets as JSON")
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(nativeCmd)
}

// resolveSpecs resolves args, reporting unrecognized specs as warnings.
// It fails only when nothing resolved.
func (s *session) resolveSpecs(args []string) ([]target.Descriptor, error) {
	if len(args) == 0 {
		args = []string{target.SpecNative}
	}
	targets, unknown := s.resolver.Resolve(args)
	for _, spec := range unknown {
		s.log.Warn("Unrecognized target: %s", spec)
	}
	if len(targets) == 0 {
		if len(unknown) > 0 {
			return nil, target.UnrecognizedError(unknown)
		}
		return nil, errNoNative
	}
	return targets, nil
}

func runTargets(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	targets, err := s.resolveSpecs(args)
	if err != nil {
		return err
	}
	if targetsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	}
	s.log.Info("Host: %s", s.host())
	for _, t := range targets {
		s.log.Target(t.String(), describeFlags(t))
	}
	return nil
}

func runNative(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	d, ok := s.resolver.FindNative()
	if !ok {
		return errNoNative
	}
	s.log.Target(d.String(), describeFlags(d))
	return nil
}

// describeFlags summarizes the derived fields of d.
func describeFlags(d target.Descriptor) string {
	var flags []string
	if d.Native {
		flags = append(flags, "native")
	}
	if d.NeedsCrossLinker {
		flags = append(flags, "cross-linker")
	}
	if d.Unmodeled {
		flags = append(flags, "unmodeled")
	}
	return strings.Join(flags, ", ")
}
