package e1epack

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Build orchestrator for data pack monorepos"
	MsgBuildShort      = "Build packs into archives"
	MsgListShort       = "List packs with their versions, dependencies and closures"
	MsgListLong        = "List resolves every pack found in the packs directory without writing anything."
	MsgValidateShort   = "Validate pack manifests, identifiers and JSON resources"
	MsgWatchShort      = "Rebuild packs when their sources change"
	MsgWorkerShort     = "Rewrite a single function file (internal)"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = "Generate a shell completion script for bash, zsh, fish or powershell and print it to stdout."
	MsgManShort        = "Generate the man page"

	// Examples
	MsgBuildExample = `  e1epack build
  e1epack build touch_controller --dry-run
  E1EPACK_WORKER_MODE=local e1epack build -vv`

	// Status messages
	MsgPacksValid      = "%d pack(s) valid\n"
	MsgVersionFormat   = "e1epack %s\n"
	MsgWatchingFormat  = "Watching %s for changes\n"
	MsgNoCommand       = "no command specified"
	MsgUnknownShell    = "unknown shell %q"
	MsgManSource       = "e1epack "
	MsgManManual       = "e1epack manual"
	MsgManTitle        = "E1EPACK"
	MsgManSection      = "1"
	MsgWorkerExitError = "worker exited with code %d"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Plan without writing anything"
	MsgFlagRoot    = "Project root (default $E1EPACK_ROOT, then the nearest e1epack.toml or git root)"
	MsgFlagConfig  = "Config file (default e1epack.toml in the project root)"
	MsgFlagJSON    = "Print machine-readable JSON"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)
)
