package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider/protocol"
)

var providerDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of installed providers",
	Long: `Run diagnostic checks on the provider installation.

Checks performed:
  - Provider directory exists and is readable
  - Lock file is valid and its entries resolve to executables
  - Each external provider responds to --plugin-info
  - Reported protocol versions are compatible
  - Enable/disable lists only reference known providers
  - No orphaned files in the provider directory
  - No stale provider processes left running

Exits non-zero if any check fails. Warnings do not affect the exit code.`,
	RunE: runProviderDoctor,
}

// doctorReport accumulates check results for the final summary.
type doctorReport struct {
	passed   int
	warnings int
	errors   int
}

func (r *doctorReport) pass(format string, args ...interface{}) {
	r.passed++
	fmt.Printf("✓ "+format+"\n", args...)
}

func (r *doctorReport) warn(format string, args ...interface{}) {
	r.warnings++
	fmt.Printf("⚠ "+format+"\n", args...)
}

func (r *doctorReport) fail(format string, args ...interface{}) {
	r.errors++
	fmt.Printf("✗ "+format+"\n", args...)
}

func runProviderDoctor(cmd *cobra.Command, args []string) error {
	report := &doctorReport{}

	fmt.Println("Checking provider installation...")
	fmt.Println()

	providerDir, err := getProviderDir()
	if err != nil {
		report.fail("Provider directory: %v", err)
	} else if _, statErr := os.Stat(providerDir); os.IsNotExist(statErr) {
		report.warn("Provider directory does not exist yet: %s", providerDir)
		providerDir = ""
	} else if statErr != nil {
		report.fail("Provider directory: %v", statErr)
		providerDir = ""
	} else {
		report.pass("Provider directory: %s", providerDir)
	}

	lock, lockPath, err := loadProviderLock()
	if err != nil {
		fmt.Printf("ℹ No provider lock file found (using defaults)\n")
	} else {
		report.pass("Lock file: %s", lockPath)
	}

	if lock != nil {
		checkExternalProviders(report, lock)
		checkProviderLists(report, lock)
		checkOrphanedFiles(report, lock, providerDir)
		checkStaleProcesses(report, lock)
	}

	fmt.Printf("\n%d passed, %d warning(s), %d error(s)\n", report.passed, report.warnings, report.errors)

	if report.errors > 0 {
		return fmt.Errorf("provider doctor found %d error(s)", report.errors)
	}
	return nil
}

// checkExternalProviders verifies each external provider in the lock file
// exists, is executable, responds to --plugin-info, and speaks a compatible
// protocol version.
func checkExternalProviders(report *doctorReport, lock *ProviderLock) {
	names := make([]string, 0, len(lock.ExternalProviders))
	for name := range lock.ExternalProviders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		meta := lock.ExternalProviders[name]

		fi, err := os.Stat(meta.Path)
		if err != nil {
			report.fail("%s: file not found: %s", name, meta.Path)
			continue
		}
		if fi.Mode()&0o111 == 0 {
			report.fail("%s: not executable: %s", name, meta.Path)
			continue
		}

		info, err := queryProviderMetadata(meta.Path)
		if err != nil {
			report.fail("%s: %v", name, err)
			continue
		}

		if info.Name != name {
			report.warn("%s: executable reports name '%s' (reinstall with 'atrium providers add' to fix)", name, info.Name)
			continue
		}

		if info.ProtocolVersion == "" {
			report.warn("%s: no protocol version reported", name)
			continue
		}

		compatible, err := protocol.IsCompatible(info.ProtocolVersion)
		if err != nil {
			report.fail("%s: %v", name, err)
			continue
		}
		if !compatible {
			report.fail("%s: protocol version %s is not compatible (requires %s, min %s)",
				name, info.ProtocolVersion, protocol.ProtocolVersion, protocol.MinCompatibleVersion)
			continue
		}

		version := info.Version
		if version == "" {
			version = "unknown"
		}
		report.pass("%s: %s (version %s, protocol %s)", name, meta.Path, version, info.ProtocolVersion)
	}
}

// checkProviderLists flags enable/disable entries that do not match any
// known provider. The "all" pseudo-provider is always valid.
func checkProviderLists(report *doctorReport, lock *ProviderLock) {
	mgr := createManagerFromLock(lock)
	known := make(map[string]bool)
	for name := range mgr.AllProviders() {
		known[name] = true
	}

	for _, name := range lock.EnabledProviders {
		if name != providerNameAll && !known[name] {
			report.warn("Enabled list references unknown provider '%s'", name)
		}
	}
	for _, name := range lock.DisabledProviders {
		if name != providerNameAll && !known[name] {
			report.warn("Disabled list references unknown provider '%s'", name)
		}
	}
}

// checkOrphanedFiles flags files in the provider directory that no lock
// entry references. Orphans typically remain after a lock file is deleted
// or edited by hand.
func checkOrphanedFiles(report *doctorReport, lock *ProviderLock, providerDir string) {
	if providerDir == "" {
		return
	}

	entries, err := os.ReadDir(providerDir)
	if err != nil {
		report.warn("Unable to read provider directory: %v", err)
		return
	}

	referenced := make(map[string]bool)
	for _, meta := range lock.ExternalProviders {
		referenced[filepath.Clean(meta.Path)] = true
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(providerDir, entry.Name())
		if !referenced[filepath.Clean(path)] {
			report.warn("Orphaned file in provider directory: %s (remove with 'rm' or reinstall)", path)
		}
	}
}

// checkStaleProcesses scans the process table for provider executables that
// are still running. Provider processes should exit after each request, so
// a long-lived one usually means a crashed or hung derivation.
func checkStaleProcesses(report *doctorReport, lock *ProviderLock) {
	executables := make(map[string]bool)
	for _, meta := range lock.ExternalProviders {
		executables[filepath.Base(meta.Path)] = true
	}
	if len(executables) == 0 {
		return
	}

	processes, err := ps.Processes()
	if err != nil {
		report.warn("Unable to scan process table: %v", err)
		return
	}

	found := false
	for _, p := range processes {
		if executables[p.Executable()] && p.Pid() != os.Getpid() {
			report.warn("Stale provider process: %s (PID %d)", p.Executable(), p.Pid())
			found = true
		}
	}
	if !found {
		report.pass("No stale provider processes")
	}
}
