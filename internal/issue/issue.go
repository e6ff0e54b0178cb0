// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NoModulesFoundId Id = iota + 1
	ManifestParseErrorId
	ModuleNotFoundId
	ModuleNotExecutableId
	BaselineCorruptId
	ConfigLoadFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to look up the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	noModulesFoundIssue = &Issue{
		id: NoModulesFoundId,
		mdMsg: `
# No modules found!

We searched every configured root but found no module manifests.

## Search layout

Each search root is scanned one level deep; every subdirectory holding a
` + "`module.json`" + ` file counts as a module.

## Things you can try:
- Check the configured search roots:
~~~
$ ecoreg report --verbose
~~~

- Create a minimal manifest in a module directory:
~~~json
{
  "name": "my-runner",
  "version": "0.1.0",
  "description": "My first runner",
  "entrypoint": {
    "command": "node",
    "args": ["index.js", "--runner", "my-runner"]
  }
}
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse a module manifest!

A module.json file contains invalid JSON or violates the manifest schema.

## Common issues:
- Trailing commas or unquoted keys (manifests must be strict JSON)
- Missing required fields (name, version, description, entrypoint)
- A name that is not a lowercase slug ([a-z0-9-]+)
- A version that is not valid semver

## Things you can try:
- Re-run with strict manifests enabled to see the module flagged inline:
~~~
$ ecoreg report --include-errors
~~~
- Check the error message above for the specific field path`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

The module you named was not discovered in any search root.

## Things you can try:
- List all discovered modules:
~~~
$ ecoreg report
~~~
- Check for typos in the module name
- Verify the module directory contains a module.json manifest`,
	}

	moduleNotExecutableIssue = &Issue{
		id: ModuleNotExecutableId,
		mdMsg: `
# Module is not executable!

The module was discovered but failed one or more preflight checks.

## The five preflight checks:
- **manifest-schema**: the manifest validates against the schema
- **entrypoint-exists**: the entrypoint script path exists on disk
- **command-available**: the entrypoint command resolves on PATH
- **required-env**: every declared requiredEnv variable is set and non-empty
- **runner-arg**: the --runner argument matches the manifest name

## Things you can try:
- See the failing checks:
~~~
$ ecoreg report --include-errors
~~~
- Export any missing environment variables and retry`,
	}

	baselineCorruptIssue = &Issue{
		id: BaselineCorruptId,
		mdMsg: `
# Baseline file could not be loaded!

The baseline exists but is not a valid serialized registry state.

## Things you can try:
- Re-capture the baseline from the current state:
~~~
$ ecoreg verify --save-baseline baseline.json
~~~
- A missing baseline is fine: without one, every module is reported as
  unexpected and nothing else`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the ecoreg configuration file.

## Configuration file locations:
- Linux: ~/.config/ecoreg/config.cue
- macOS: ~/Library/Application Support/ecoreg/config.cue
- Windows: %APPDATA%\ecoreg\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
search_roots: [
	{path: "modules", type: "primary"},
	{path: "/srv/ecoreg/cache", type: "cache"},
]
min_contract_version: "2.0.0"
drift: {
	critical_threshold: 3
	warning_threshold:  5
}
~~~`,
	}

	issues = map[Id]*Issue{
		noModulesFoundIssue.Id():      noModulesFoundIssue,
		manifestParseErrorIssue.Id():  manifestParseErrorIssue,
		moduleNotFoundIssue.Id():      moduleNotFoundIssue,
		moduleNotExecutableIssue.Id(): moduleNotExecutableIssue,
		baselineCorruptIssue.Id():     baselineCorruptIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

// SortedIds returns all known issue ids in ascending order.
func SortedIds() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}
