package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alpinelinux/goadb/internal/adblayout"
	"github.com/alpinelinux/goadb/internal/adbdb"
	"github.com/alpinelinux/goadb/internal/adbio"
	"github.com/alpinelinux/goadb/internal/adbscalar"
	"github.com/alpinelinux/goadb/internal/adbschema"
	"github.com/alpinelinux/goadb/internal/adbval"
	"github.com/alpinelinux/goadb/internal/logging"
	"github.com/alpinelinux/goadb/internal/pkgschema"
)

// infoOptions mirrors app_info.c's per-flag subaction bits: each boolean
// below corresponds to one of info_fields' field masks, plus the three
// flags (contents, installed, who-owns) that select a whole different
// action instead of a field mask.
type infoOptions struct {
	All         bool
	Contents    bool
	Depends     bool
	Description bool
	InstallIf   bool
	Installed   bool
	License     bool
	Maintainer  bool
	Origin      bool
	Provides    bool
	RDepends    bool
	Replaces    bool
	RInstallIf  bool
	Size        bool
	Triggers    bool
	Webpage     bool
	WhoOwns     bool
}

// fieldMask returns the set of info_fields entries this options value
// selects. An all-zero selection (no flags given) and the All flag both
// mean "all fields", matching info_main's
// `if (ictx->subaction_mask == 0) ... = 0xffffffff`.
func (o infoOptions) fieldMask() map[string]bool {
	mask := map[string]bool{
		"Depends":     o.Depends,
		"Description": o.Description,
		"Install-If":  o.InstallIf,
		"License":     o.License,
		"Maintainer":  o.Maintainer,
		"Origin":      o.Origin,
		"Provides":    o.Provides,
		"RDepends":    o.RDepends,
		"Replaces":    o.Replaces,
		"RInstallIf":  o.RInstallIf,
		"Size":        o.Size,
		"Triggers":    o.Triggers,
		"Webpage":     o.Webpage,
	}
	any := o.All
	for _, v := range mask {
		any = any || v
	}
	if !any || o.All {
		for k := range mask {
			mask[k] = true
		}
	}
	return mask
}

// pkg bundles one installed package's own decoded sub-database (each
// Package is an independently serialized embedded ADB block, spec.md
// §4.6) with its name/version pulled up front since nearly every action
// needs them.
type pkg struct {
	db      *adbdb.Database
	view    adbschema.FieldReader
	name    string
	version string
}

// runInfo loads the installed database under layout and executes the
// selected action, returning the accumulated error count the way
// info_main's ctx.errors does.
func runInfo(w io.Writer, log logging.Logger, layout *adblayout.Layout, opts infoOptions, args []string) (int, error) {
	db, err := loadInstalledDB(layout)
	if err != nil {
		return 0, err
	}
	packages, err := loadPackages(db)
	if err != nil {
		return 0, err
	}

	switch {
	case opts.Contents:
		log.Warn("apk info -L has been replaced with apk manifest")
		return 0, nil
	case opts.Installed:
		return infoInstalled(w, packages, args), nil
	case opts.WhoOwns:
		return infoWhoOwns(w, packages, args), nil
	}

	mask := opts.fieldMask()
	if len(args) == 0 {
		for _, p := range packages {
			fmt.Fprintf(w, "%s-%s\n", p.name, p.version)
		}
		return 0, nil
	}

	errors := 0
	for _, name := range args {
		matches := findByName(packages, name)
		if len(matches) == 0 {
			fmt.Fprintf(w, "ERROR: %s: unable to select package\n", name)
			errors++
			continue
		}
		for _, p := range matches {
			printFields(w, packages, p, mask)
		}
	}
	return errors, nil
}

// loadInstalledDB opens the root's installed-db file and decodes it.
func loadInstalledDB(layout *adblayout.Layout) (*adbdb.Database, error) {
	f, err := os.Open(layout.InstalledDBFile())
	if err != nil {
		return nil, fmt.Errorf("opening installed database: %w", err)
	}
	defer f.Close()

	db, err := adbio.Read(f, adbdb.SchemaID(pkgschema.SchemaInstalledDB))
	if err != nil {
		return nil, fmt.Errorf("reading installed database: %w", err)
	}
	return db, nil
}

// loadPackages flattens the installed database's PackageArray into pkg
// values. Each element is a KindADB handle referencing a fully
// self-contained nested database (spec.md §4.6); decodePackage reads it
// back before its own name/version can be pulled up front for matching
// and sorting.
func loadPackages(db *adbdb.Database) ([]pkg, error) {
	root := db.ObjectView(db.Root())
	arr := db.Array(root.Field(pkgschema.IdbPackages))

	packages := make([]pkg, 0, len(arr.Elements))
	for _, h := range arr.Elements {
		nested, err := decodePackage(db, h)
		if err != nil {
			return nil, fmt.Errorf("decoding embedded package: %w", err)
		}
		view := nested.ObjectView(nested.Root())
		info := nested.ObjectView(view.Field(pkgschema.PkgInfoField))
		packages = append(packages, pkg{
			db:      nested,
			view:    view,
			name:    string(info.Blob(info.Field(pkgschema.PIName))),
			version: string(info.Blob(info.Field(pkgschema.PIVersion))),
		})
	}
	return packages, nil
}

// decodePackage reads back the nested sub-database an ADB handle in the
// installed database's PackageArray references.
func decodePackage(db *adbdb.Database, h adbval.Handle) (*adbdb.Database, error) {
	data := db.Embedded(h)
	if data == nil {
		return nil, fmt.Errorf("handle %v is not an embedded package", h)
	}
	return adbio.Read(bytes.NewReader(data), adbdb.SchemaID(pkgschema.SchemaPackage))
}

// infoField returns the PkgInfo FieldReader for one loaded package.
func infoField(p pkg) adbschema.FieldReader {
	return p.db.ObjectView(p.view.Field(pkgschema.PkgInfoField))
}

func findByName(packages []pkg, name string) []pkg {
	var out []pkg
	for _, p := range packages {
		if p.name == name {
			out = append(out, p)
		}
	}
	return out
}

// infoInstalled implements the `-e/--installed` action: report whether
// each named package is present, matching info_exists's behavior of
// counting an error for every name that doesn't resolve.
func infoInstalled(w io.Writer, packages []pkg, args []string) int {
	errors := 0
	for _, name := range args {
		matches := findByName(packages, name)
		if len(matches) == 0 {
			errors++
			continue
		}
		for _, p := range matches {
			fmt.Fprintf(w, "%s-%s\n", p.name, p.version)
		}
	}
	return errors
}

// infoWhoOwns implements the `-W/--who-owns` action: scan every package's
// file manifest for an entry matching the given path.
func infoWhoOwns(w io.Writer, packages []pkg, args []string) int {
	errors := 0
	for _, path := range args {
		owner, ok := findOwner(packages, path)
		if !ok {
			fmt.Fprintf(w, "ERROR: %s: Could not find owner package\n", path)
			errors++
			continue
		}
		fmt.Fprintf(w, "%s is owned by %s-%s\n", path, owner.name, owner.version)
	}
	return errors
}

func findOwner(packages []pkg, path string) (pkg, bool) {
	path = strings.TrimPrefix(path, "/")
	for _, p := range packages {
		pathsHandle := p.view.Field(pkgschema.PkgPaths)
		for _, dirHandle := range p.db.Array(pathsHandle).Elements {
			dir := p.db.ObjectView(dirHandle)
			dirName := string(dir.Blob(dir.Field(pkgschema.PathName)))
			for _, fileHandle := range p.db.Array(dir.Field(pkgschema.PathFiles)).Elements {
				file := p.db.ObjectView(fileHandle)
				fileName := string(file.Blob(file.Field(pkgschema.FIName)))
				full := strings.TrimPrefix(dirName+"/"+fileName, "/")
				if full == path {
					return p, true
				}
			}
		}
	}
	return pkg{}, false
}

// printFields renders one package's selected fields, in info_fields'
// table order, followed by a blank line (info_subaction's trailing
// puts("")).
func printFields(w io.Writer, packages []pkg, p pkg, mask map[string]bool) {
	info := infoField(p)

	fmt.Fprintf(w, "Package: %s\n", p.name)
	fmt.Fprintf(w, "Version: %s\n", p.version)

	printBlobField(w, info, "Source-Package", mask["Origin"], pkgschema.PIOrigin)
	printBlobField(w, info, "Description", mask["Description"], pkgschema.PIDescription)
	printBlobField(w, info, "URL", mask["Webpage"], pkgschema.PIURL)
	printBlobField(w, info, "License", mask["License"], pkgschema.PILicense)
	printBlobField(w, info, "Maintainer", mask["Maintainer"], pkgschema.PIMaintainer)

	if mask["Size"] {
		fmt.Fprintf(w, "Download-Size: %s\n", hsizeString(info, pkgschema.PIFileSize))
		fmt.Fprintf(w, "Installed-Size: %s\n", hsizeString(info, pkgschema.PIInstalledSize))
	}

	printDependencyList(w, p.db, info, "Depends", mask["Depends"], pkgschema.PIDepends)
	printDependencyList(w, p.db, info, "Provides", mask["Provides"], pkgschema.PIProvides)
	printDependencyList(w, p.db, info, "Replaces", mask["Replaces"], pkgschema.PIReplaces)
	printDependencyList(w, p.db, info, "Install-If", mask["Install-If"], pkgschema.PIInstallIf)

	if mask["RDepends"] {
		printReverseDeps(w, packages, p, "Reverse-Depends", pkgschema.PIDepends)
	}
	if mask["RInstallIf"] {
		printReverseDeps(w, packages, p, "Reverse-Install-If", pkgschema.PIInstallIf)
	}
	if mask["Triggers"] {
		printTriggers(w, p)
	}

	fmt.Fprintln(w)
}

func printBlobField(w io.Writer, info adbschema.FieldReader, label string, want bool, field int) {
	if !want {
		return
	}
	h := info.Field(field)
	if h.IsNull() {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", label, string(info.Blob(h)))
}

func hsizeString(info adbschema.FieldReader, field int) string {
	h := info.Field(field)
	var buf [32]byte
	return string(adbscalar.HSize.ToString(info, h, buf[:0]))
}

// printDependencyList renders a DependencyArray field using Dependency's
// own ToString, the same rendering the ADB write path uses (spec.md
// §4.3's scalar/object converters are normative, not just for writing).
func printDependencyList(w io.Writer, db *adbdb.Database, info adbschema.FieldReader, label string, want bool, field int) {
	if !want {
		return
	}
	h := info.Field(field)
	if h.IsNull() {
		return
	}
	elements := db.Array(h).Elements
	if len(elements) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: ", label)
	var buf [256]byte
	for _, depHandle := range elements {
		dep := db.ObjectView(depHandle)
		fmt.Fprintf(w, "%s ", string(pkgschema.Dependency.ToString(dep, buf[:0])))
	}
	fmt.Fprintln(w)
}

// printReverseDeps scans every other installed package's dependency
// array for an entry whose name matches target, mirroring
// print_info_revdep/print_info_rinstall_if - a plain name scan over the
// already-loaded package set, not a constraint solve.
func printReverseDeps(w io.Writer, packages []pkg, target pkg, label string, field int) {
	fmt.Fprintf(w, "%s: ", label)
	for _, p := range packages {
		if p.name == target.name {
			continue
		}
		info := infoField(p)
		h := info.Field(field)
		if h.IsNull() {
			continue
		}
		for _, depHandle := range p.db.Array(h).Elements {
			dep := p.db.ObjectView(depHandle)
			depName := string(dep.Blob(dep.Field(pkgschema.DepName)))
			if depName == target.name {
				fmt.Fprintf(w, "%s-%s ", p.name, p.version)
				break
			}
		}
	}
	fmt.Fprintln(w)
}

// printTriggers renders the package's trigger glob list, matching
// print_info_triggers's "skip if empty" behavior.
func printTriggers(w io.Writer, p pkg) {
	h := p.view.Field(pkgschema.PkgTriggers)
	if h.IsNull() {
		return
	}
	elements := p.db.Array(h).Elements
	if len(elements) == 0 {
		return
	}
	fmt.Fprint(w, "Triggers: ")
	for _, th := range elements {
		fmt.Fprintf(w, "%s ", string(p.db.Blob(th)))
	}
	fmt.Fprintln(w)
}
