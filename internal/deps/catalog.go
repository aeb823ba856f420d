package deps

import "sort"

// Step is a command run around a manager's install, e.g. adding an apt
// repository before "apt-get install".
type Step struct {
	// Manager limits the step to one manager; empty runs it for all.
	Manager string
	Name    string
	Args    []string
}

// Dependency is a tool the environment needs.
type Dependency struct {
	Name string
	// Binary is looked up on PATH to decide whether the tool is installed.
	// Defaults to Name.
	Binary string
	// Managers are tried in order until one leaves Binary on PATH.
	Managers []string
	// Packages overrides the package name for specific managers.
	Packages map[string]string
	// Requires names catalog entries to install first.
	Requires []string
	Pre      []Step
	Post     []Step
}

// BinaryName returns the binary checked on PATH.
func (d Dependency) BinaryName() string {
	if d.Binary != "" {
		return d.Binary
	}
	return d.Name
}

// PackageFor returns the package name to hand to the given manager.
func (d Dependency) PackageFor(manager string) string {
	if p, ok := d.Packages[manager]; ok {
		return p
	}
	return d.Name
}

// Catalog maps dependency names to their definitions.
type Catalog map[string]Dependency

// Names returns the catalog's dependency names sorted alphabetically.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultSet is installed by "install-deps" when no names are given.
var DefaultSet = []string{
	"p7zip",
	"git",
	"git-annex",
	"rclone",
	"git-annex-remote-rclone",
	"wget",
	"gh",
	"datalad",
	"pdm",
}

const ghKeyring = "/etc/apt/keyrings/githubcli-archive-keyring.gpg"

// DefaultCatalog returns the tools a lab workstation needs.
func DefaultCatalog() Catalog {
	system := []string{AptGet, Brew, Conda}

	deps := []Dependency{
		{
			Name:     "p7zip",
			Binary:   "7z",
			Managers: system,
			Packages: map[string]string{AptGet: "p7zip-full"},
		},
		{Name: "git", Managers: system},
		{Name: "git-annex", Managers: system},
		{Name: "rclone", Managers: system},
		{
			Name:     "git-annex-remote-rclone",
			Managers: system,
			Requires: []string{"git-annex", "rclone"},
		},
		{Name: "wget", Managers: []string{AptGet, Brew}},
		{
			Name:     "gh",
			Managers: system,
			Requires: []string{"wget"},
			Pre: []Step{
				{Manager: AptGet, Name: "sudo", Args: []string{"mkdir", "-p", "-m", "755", "/etc/apt/keyrings"}},
				{Manager: AptGet, Name: "sudo", Args: []string{"wget", "-qO", ghKeyring, "https://cli.github.com/packages/githubcli-archive-keyring.gpg"}},
				{Manager: AptGet, Name: "sudo", Args: []string{"chmod", "go+r", ghKeyring}},
				{Manager: AptGet, Name: "sudo", Args: []string{"sh", "-c",
					`echo "deb [arch=$(dpkg --print-architecture) signed-by=` + ghKeyring + `] https://cli.github.com/packages stable main" > /etc/apt/sources.list.d/github-cli.list`}},
				{Manager: AptGet, Name: "sudo", Args: []string{"apt-get", "update"}},
			},
		},
		{
			Name:     "pipx",
			Managers: []string{Conda, AptGet, Brew},
			Post:     []Step{{Name: "pipx", Args: []string{"ensurepath"}}},
		},
		{
			Name:     "datalad",
			Managers: []string{Pipx, Conda, AptGet, Brew},
			Requires: []string{"pipx"},
		},
		{
			Name:     "uv",
			Managers: []string{Pipx, Brew, Conda},
			Requires: []string{"pipx"},
		},
		{
			Name:     "pdm",
			Managers: []string{Pipx},
			Requires: []string{"pipx"},
		},
	}

	catalog := make(Catalog, len(deps))
	for _, d := range deps {
		catalog[d.Name] = d
	}
	return catalog
}
