package cli

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/term"

	"github.com/jmylchreest/atrium/internal/provider/manager"
)

// providerRow is one display row of the providers list.
type providerRow struct {
	Name        string
	Version     string
	Status      string
	Description string
	Path        string
	External    bool
}

// versioner is implemented by providers that report a version.
type versioner interface {
	Version() string
}

// collectProviders gathers every registered provider plus lock file externals
// that failed to register, sorted by name.
func collectProviders(mgr *manager.Manager, lock *ProviderLock) []providerRow {
	rows := make([]providerRow, 0)
	seen := make(map[string]bool)

	for _, p := range mgr.AllProviders() {
		row := providerRow{
			Name:        p.Name(),
			Version:     "builtin",
			Description: p.Description(),
			Status:      "disabled",
		}
		if mgr.IsEnabled(p) {
			row.Status = "enabled"
		}

		if ext, ok := p.(*manager.ExternalProvider); ok {
			row.External = true
			row.Path = ext.Path()
			row.Version = ext.Version()
		} else if v, ok := p.(versioner); ok {
			row.Version = v.Version()
		}

		seen[row.Name] = true
		rows = append(rows, row)
	}

	// Lock file externals that did not register (missing or broken
	// executables) still get a row so the failure is visible.
	if lock != nil {
		for name, meta := range lock.ExternalProviders {
			if seen[name] {
				continue
			}
			rows = append(rows, providerRow{
				Name:        name,
				Version:     meta.Version,
				Status:      "error",
				Description: meta.Description,
				Path:        meta.Path,
				External:    true,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// displayProviderTable renders the provider rows as a table on stdout.
func displayProviderTable(rows []providerRow, showPath bool) {
	headers := []string{"NAME", "VERSION", "STATUS", "DESCRIPTION"}
	if showPath {
		headers = append(headers, "PATH")
	}

	tbl := NewTable(headers...)

	// Wrap the description column to fit the terminal.
	tbl.SetColumnMaxWidth(3, descriptionWidth(showPath))

	external := false
	for _, row := range rows {
		name := row.Name
		if row.External {
			name += " *"
			external = true
		}

		cells := []string{name, row.Version, row.Status, row.Description}
		if showPath {
			cells = append(cells, row.Path)
		}
		tbl.AddRow(cells...)
	}

	fmt.Print(tbl.Render())

	if external {
		fmt.Println("\n* external provider")
	}
}

// descriptionWidth budgets the description column from the terminal width,
// leaving room for the fixed columns.
func descriptionWidth(showPath bool) int {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	reserved := 40
	if showPath {
		reserved += 30
	}

	avail := width - reserved
	if avail < 24 {
		avail = 24
	}
	if avail > 70 {
		avail = 70
	}
	return avail
}
