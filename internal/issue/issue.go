// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	SettingNotFoundId Id = iota + 1
	ManifestUnreadableId
	InvalidDirectiveId
	UnsupportedValueId
	ConfigLoadFailedId
	PackageScanFailedId
	GeneratedFileWriteFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	settingNotFoundIssue = &Issue{
		id: SettingNotFoundId,
		mdMsg: `
# Setting not found!

No manifest between the component directory and the last ancestor with a manifest
declares the requested setting.

## How the lookup works
1. The manifest of the component named in the directive is located below the project root.
2. ` + "`package.metadata.settings.<namespace>.<key>`" + ` is read from it.
3. When anything on that path is missing, the parent directory's manifest is tried,
   as long as the parent has one.

## Things you can try:
- Declare the setting in the component manifest or an ancestor:
~~~toml
[package.metadata.settings.my-component]
some-key = "value"
~~~
- Check that every directory between the component and the declaring manifest has a
  manifest, otherwise the search stops early
- Trace the search:
~~~
$ pkgsettings get my-component some-key --verbose
~~~`,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0#table"},
	}

	manifestUnreadableIssue = &Issue{
		id: ManifestUnreadableId,
		mdMsg: `
# Manifest could not be read!

The last manifest checked could not be opened or is not valid TOML.

## Things you can try:
- Check the file permissions
- Validate the TOML syntax, e.g. unclosed tables or strings
- Use a different manifest file name in the configuration:
~~~cue
manifest_name: "Cargo.toml"
~~~`,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
	}

	invalidDirectiveIssue = &Issue{
		id: InvalidDirectiveId,
		mdMsg: `
# Invalid settings directive!

Directives must name a Go identifier and call settings with exactly two non-empty
string literals.

## Example:
~~~go
//settings:def Greeting = settings("example-crate", "some-key")
~~~

## Things you can try:
- Quote both arguments
- Remove default values, a third argument is not accepted
- Use each identifier only once per package`,
	}

	unsupportedValueIssue = &Issue{
		id: UnsupportedValueId,
		mdMsg: `
# Setting has no typed Go form!

Strict mode is enabled and the setting is a table or an array whose elements differ
in type.

## Things you can try:
- Split the table into individual keys
- Make all array elements the same type
- Disable strict mode to receive the value rendered as a string:
~~~cue
strict: false
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the pkgsettings configuration file.

## Configuration file locations (in order of precedence):
1. The path given with --config
2. Linux: ~/.config/pkgsettings/config.cue, macOS: ~/Library/Application Support/pkgsettings/config.cue, Windows: %AppData%\pkgsettings\config.cue
3. pkgsettings.cue in the current directory

## Things you can try:
- Create a default configuration:
~~~
$ pkgsettings config init
~~~
- Check the configuration syntax against the output of:
~~~
$ pkgsettings config dump
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	packageScanFailedIssue = &Issue{
		id: PackageScanFailedId,
		mdMsg: `
# Failed to scan the Go package!

The directory does not contain a single parseable Go package.

## Things you can try:
- Run the generator from the package directory, which is what go generate does
- Fix Go syntax errors first:
~~~
$ go vet .
~~~`,
	}

	generatedFileWriteFailedIssue = &Issue{
		id: GeneratedFileWriteFailedId,
		mdMsg: `
# Failed to write the generated file!

## Things you can try:
- Check the directory permissions
- Choose another output file name in the configuration:
~~~cue
output: "zz_settings.go"
~~~`,
	}

	issues = map[Id]*Issue{
		settingNotFoundIssue.Id():          settingNotFoundIssue,
		manifestUnreadableIssue.Id():       manifestUnreadableIssue,
		invalidDirectiveIssue.Id():         invalidDirectiveIssue,
		unsupportedValueIssue.Id():         unsupportedValueIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		packageScanFailedIssue.Id():        packageScanFailedIssue,
		generatedFileWriteFailedIssue.Id(): generatedFileWriteFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
