// Package pkgschema instantiates the concrete object/array schemas for
// Alpine's package metadata: a dependency expression, a package's
// control-file metadata (PkgInfo), a manifest file/path entry, install
// scripts, a whole package (info + paths + scripts + triggers), a
// repository index, and an installed-package database (spec.md §4.2),
// grounded field-for-field on original_source/apk_adb.c.
package pkgschema

import (
	"encoding/hex"

	"github.com/alpinelinux/goadb/internal/adbbuilder"
	"github.com/alpinelinux/goadb/internal/adbschema"
	"github.com/alpinelinux/goadb/internal/adbscalar"
	"github.com/alpinelinux/goadb/internal/adbval"
	"github.com/alpinelinux/goadb/internal/depexpr"
)

// Dependency field indices.
const (
	DepName = iota
	DepVersion
	DepMatch
)

// Dependency is "name[OP[OP...]ver][@tag]" as a structured object
// (spec.md §4.4), grounded on original_source's schema_dependency.
var Dependency = &adbschema.ObjectSchema{
	NumFields: 3,
	Fields: []adbschema.FieldDef{
		{Index: DepName, Name: "name", Schema: adbscalar.String},
		{Index: DepVersion, Name: "version", Schema: adbscalar.Version},
		{Index: DepMatch, Name: "match", Schema: adbscalar.Int},
	},
	Compare: func(o1, o2 adbschema.FieldReader) int {
		return adbscalar.String.Compare(o1, o1.Field(DepName), o2, o2.Field(DepName))
	},
	ToString:   dependencyToString,
	FromString: dependencyFromString,
}

func dependencyToString(o adbschema.FieldReader, buf []byte) []byte {
	name := o.Blob(o.Field(DepName))
	if name == nil {
		return nil
	}
	mask := depexpr.Mask(o.Int(o.Field(DepMatch)))
	ver := o.Blob(o.Field(DepVersion))
	e := depexpr.Expr{Name: string(name), Version: string(ver), Match: mask}
	return append(buf[:0], e.String()...)
}

// dependencyFromString only ever runs through an ObjectBuilder-shaped
// FieldWriter (*adbbuilder.ObjectBuilder), since it is invoked exclusively
// from adbbuilder's schema-dispatch path; fieldIndex is unused as this
// hook parses a whole dependency expression, not one already-addressed
// field (spec.md §4.2).
func dependencyFromString(w adbschema.FieldWriter, _ int, text []byte) (adbval.Handle, bool) {
	e, err := depexpr.Parse(text)
	if err != nil {
		return adbval.NewError(adbval.ErrDepFormat), true
	}
	w.SetField(DepName, w.WriteBlob([]byte(e.Name)))
	if e.Version != "" {
		w.SetField(DepVersion, w.WriteBlob([]byte(e.Version)))
	}
	if e.Match != depexpr.Any {
		w.SetField(DepMatch, w.WriteInt(uint32(e.Match)))
	}
	return adbval.Null, true
}

// DependencyArray parses a whitespace/separator-delimited list of
// dependency expressions and sorts + dedups the result (spec.md §4.4,
// original_source's dependencies_fromstring + adb_wa_sort_unique).
var DependencyArray = &adbschema.ArraySchema{
	Element:    Dependency,
	MaxFields:  defaultMaxDependencies,
	PreCommit:  adbschema.SortUnique,
	FromString: dependencyListFromString,
}

const (
	defaultMaxDependencies = 1024
	defaultMaxIndexPkgs    = 1 << 20
	defaultMaxManifestFile = 1 << 20
	defaultMaxTriggers     = 128
)

func dependencyListFromString(w adbschema.Writer, text []byte, appendElem func(adbval.Handle)) adbval.Handle {
	db, ok := w.(adbbuilder.Database)
	if !ok {
		return adbval.NewError(adbval.ErrDepFormat)
	}
	for _, tok := range splitDependencies(text) {
		if len(tok) == 0 {
			continue
		}
		sub := adbbuilder.OpenObject(Dependency, db)
		h, _ := Dependency.FromString(sub, -1, tok)
		if h.IsError() {
			return h
		}
		appendElem(sub.Commit())
	}
	return adbval.Null
}

// splitDependencies splits on runs of space/tab/CR/LF/comma, mirroring
// original_source's apk_dep_split over apk_spn_dependency_separator.
func splitDependencies(text []byte) [][]byte {
	var out [][]byte
	start := -1
	for i, c := range text {
		if isDependencySeparator(c) {
			if start >= 0 {
				out = append(out, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, text[start:])
	}
	return out
}

func isDependencySeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ','
}

// PkgInfo field indices.
const (
	PIName = iota
	PIVersion
	PIUniqueID
	PIDescription
	PIArch
	PILicense
	PIOrigin
	PIMaintainer
	PIURL
	PIRepoCommit
	PIBuildTime
	PIInstalledSize
	PIFileSize
	PIPriority
	PIDepends
	PIProvides
	PIReplaces
	PIInstallIf
	PIRecommends
)

// PkgInfo is a package's control-file metadata, with a legacy
// single-letter FieldCode table for reading the plain-text .PKGINFO /
// APKINDEX format (spec.md §4.2, original_source's adb_pkg_field_index).
var PkgInfo = &adbschema.ObjectSchema{
	NumFields: 19,
	Fields: []adbschema.FieldDef{
		{Index: PIName, Name: "name", Schema: adbscalar.String},
		{Index: PIVersion, Name: "version", Schema: adbscalar.Version},
		{Index: PIUniqueID, Name: "unique-id", Schema: adbscalar.Int},
		{Index: PIDescription, Name: "description", Schema: adbscalar.String},
		{Index: PIArch, Name: "arch", Schema: adbscalar.String},
		{Index: PILicense, Name: "license", Schema: adbscalar.String},
		{Index: PIOrigin, Name: "origin", Schema: adbscalar.String},
		{Index: PIMaintainer, Name: "maintainer", Schema: adbscalar.String},
		{Index: PIURL, Name: "url", Schema: adbscalar.String},
		{Index: PIRepoCommit, Name: "repo-commit", Schema: adbscalar.HexBlob},
		{Index: PIBuildTime, Name: "build-time", Schema: adbscalar.Int},
		{Index: PIInstalledSize, Name: "installed-size", Schema: adbscalar.HSize},
		{Index: PIFileSize, Name: "file-size", Schema: adbscalar.HSize},
		{Index: PIPriority, Name: "priority", Schema: adbscalar.Int},
		{Index: PIDepends, Name: "depends", Schema: DependencyArray},
		{Index: PIProvides, Name: "provides", Schema: DependencyArray},
		{Index: PIReplaces, Name: "replaces", Schema: DependencyArray},
		{Index: PIInstallIf, Name: "install-if", Schema: DependencyArray},
		{Index: PIRecommends, Name: "recommends", Schema: DependencyArray},
	},
	Compare:    pkginfoCompare,
	FromString: pkginfoFieldFromString,
	FieldCode: map[byte]int{
		'C': PIUniqueID,
		'P': PIName,
		'V': PIVersion,
		'T': PIDescription,
		'U': PIURL,
		'I': PIInstalledSize,
		'S': PIFileSize,
		'L': PILicense,
		'A': PIArch,
		'D': PIDepends,
		'i': PIInstallIf,
		'p': PIProvides,
		'o': PIOrigin,
		'm': PIMaintainer,
		't': PIBuildTime,
		'c': PIRepoCommit,
		'r': PIReplaces,
		'k': PIPriority,
	},
}

// pkginfoCompare cascades name -> version -> unique-id, matching
// original_source's pkginfo_cmp.
func pkginfoCompare(o1, o2 adbschema.FieldReader) int {
	if c := adbscalar.String.Compare(o1, o1.Field(PIName), o2, o2.Field(PIName)); c != 0 {
		return c
	}
	if c := adbscalar.Version.Compare(o1, o1.Field(PIVersion), o2, o2.Field(PIVersion)); c != 0 {
		return c
	}
	return adbscalar.Int.Compare(o1, o1.Field(PIUniqueID), o2, o2.Field(PIUniqueID))
}

// pkginfoFieldFromString special-cases unique-id (truncated checksum) and
// repo-commit (40-hex -> 20-byte blob); every other field falls through
// to its own scalar FromString (spec.md §4.5, original_source's
// adb_wo_pkginfo).
func pkginfoFieldFromString(w adbschema.FieldWriter, fieldIndex int, text []byte) (adbval.Handle, bool) {
	switch fieldIndex {
	case PIUniqueID:
		if len(text) < 4 {
			return adbval.NewError(adbval.ErrBadFormat), true
		}
		n := uint32(text[0]) | uint32(text[1])<<8 | uint32(text[2])<<16 | uint32(text[3])<<24
		return w.WriteInt(n & 0x0FFFFFFF), true
	case PIRepoCommit:
		if len(text) < 40 {
			return adbval.NewError(adbval.ErrBadFormat), true
		}
		csum := make([]byte, 20)
		if _, err := hex.Decode(csum, text[:40]); err != nil {
			return adbval.NewError(adbval.ErrBadFormat), true
		}
		return w.WriteBlob(csum), true
	default:
		return adbval.Null, false
	}
}

// File field indices (manifest file entry).
const (
	FIName = iota
	FIHash
	FIUID
	FIGID
	FIMode
	FIXattrs
)

func fileDefault(index int) uint32 {
	switch index {
	case FIUID, FIGID:
		return 0
	case FIMode:
		return 0o644
	}
	return 0
}

var fileCompare = func(o1, o2 adbschema.FieldReader) int {
	return adbscalar.String.Compare(o1, o1.Field(FIName), o2, o2.Field(FIName))
}

// File is one file entry within a package's manifest (spec.md §4.2,
// original_source's schema_file).
var File = &adbschema.ObjectSchema{
	NumFields: 6,
	Fields: []adbschema.FieldDef{
		{Index: FIName, Name: "name", Schema: adbscalar.String},
		{Index: FIHash, Name: "hash", Schema: adbscalar.HexBlob},
		{Index: FIUID, Name: "uid", Schema: adbscalar.Int},
		{Index: FIGID, Name: "gid", Schema: adbscalar.Int},
		{Index: FIMode, Name: "mode", Schema: adbscalar.Oct},
		{Index: FIXattrs, Name: "xattr", Schema: adbscalar.HexBlob},
	},
	GetDefault: fileDefault,
	Compare:    fileCompare,
}

// FileArray is a sorted vector of File entries.
var FileArray = &adbschema.ArraySchema{
	Element:   File,
	MaxFields: defaultMaxManifestFile,
	PreCommit: adbschema.Sort,
}

func pathDefault(index int) uint32 {
	switch index {
	case FIUID, FIGID:
		return 0
	case FIMode:
		return 0o755
	}
	return 0
}

// Path field indices.
const (
	PathName = iota
	PathFiles
	PathUID
	PathGID
	PathMode
	PathXattrs
)

// Path is a directory entry owning a sorted vector of File entries
// (spec.md §4.2, original_source's schema_path).
var Path = &adbschema.ObjectSchema{
	NumFields: 6,
	Fields: []adbschema.FieldDef{
		{Index: PathName, Name: "name", Schema: adbscalar.String},
		{Index: PathFiles, Name: "files", Schema: FileArray},
		{Index: PathUID, Name: "uid", Schema: adbscalar.Int},
		{Index: PathGID, Name: "gid", Schema: adbscalar.Int},
		{Index: PathMode, Name: "mode", Schema: adbscalar.Oct},
		{Index: PathXattrs, Name: "xattr", Schema: adbscalar.HexBlob},
	},
	GetDefault: pathDefault,
	Compare: func(o1, o2 adbschema.FieldReader) int {
		return adbscalar.String.Compare(o1, o1.Field(PathName), o2, o2.Field(PathName))
	},
}

// PathArray is a sorted vector of Path entries.
var PathArray = &adbschema.ArraySchema{
	Element:   Path,
	MaxFields: defaultMaxManifestFile,
	PreCommit: adbschema.Sort,
}

// Scripts field indices.
const (
	ScriptTrigger = iota
	ScriptPreInstall
	ScriptPostInstall
	ScriptPreDeinstall
	ScriptPostDeinstall
	ScriptPreUpgrade
	ScriptPostUpgrade
)

// Scripts holds a package's lifecycle hook scripts, all multi-line text
// blobs with no ordering or comparison semantics (spec.md §4.2,
// original_source's schema_scripts).
var Scripts = &adbschema.ObjectSchema{
	NumFields: 7,
	Fields: []adbschema.FieldDef{
		{Index: ScriptTrigger, Name: "trigger", Schema: adbscalar.MString},
		{Index: ScriptPreInstall, Name: "pre-install", Schema: adbscalar.MString},
		{Index: ScriptPostInstall, Name: "post-install", Schema: adbscalar.MString},
		{Index: ScriptPreDeinstall, Name: "pre-deinstall", Schema: adbscalar.MString},
		{Index: ScriptPostDeinstall, Name: "post-deinstall", Schema: adbscalar.MString},
		{Index: ScriptPreUpgrade, Name: "pre-upgrade", Schema: adbscalar.MString},
		{Index: ScriptPostUpgrade, Name: "post-upgrade", Schema: adbscalar.MString},
	},
}

// Triggers is the flat list of trigger glob patterns a package installs
// (spec.md §4.2, original_source's schema_string_array reused for
// ADBI_PKG_TRIGGERS).
var Triggers = &adbschema.ArraySchema{
	Element:   adbscalar.String,
	MaxFields: defaultMaxTriggers,
}

// Package field indices.
const (
	PkgInfoField = iota
	PkgPaths
	PkgScripts
	PkgTriggers
)

// Package is a whole package: its control metadata, its installed file
// manifest, its lifecycle scripts, and its trigger globs (spec.md §4.2,
// original_source's schema_package). The original's commented-out
// "passwd" field is intentionally not implemented here; see DESIGN.md.
var Package = &adbschema.ObjectSchema{
	NumFields: 4,
	Fields: []adbschema.FieldDef{
		{Index: PkgInfoField, Name: "info", Schema: PkgInfo},
		{Index: PkgPaths, Name: "paths", Schema: PathArray},
		{Index: PkgScripts, Name: "scripts", Schema: Scripts},
		{Index: PkgTriggers, Name: "triggers", Schema: Triggers},
	},
	Compare: func(o1, o2 adbschema.FieldReader) int {
		info1 := o1.ObjectView(o1.Field(PkgInfoField))
		info2 := o2.ObjectView(o2.Field(PkgInfoField))
		return PkgInfo.Compare(info1, info2)
	},
}

// PackageADB marks Package as an independently addressable embedded
// sub-database with its own magic (spec.md §4.2, "Embedded-DB schema",
// original_source's schema_package_adb).
var PackageADB = &adbschema.EmbeddedSchema{
	SchemaID:  SchemaPackage,
	Contained: Package,
}

// PackageArray is a sorted vector of embedded Package sub-databases.
var PackageArray = &adbschema.ArraySchema{
	Element:   PackageADB,
	MaxFields: defaultMaxIndexPkgs,
	PreCommit: adbschema.Sort,
}

// Index field indices.
const (
	NdxDescription = iota
	NdxPackages
)

// PkgInfoArray is a sorted vector of PkgInfo entries, used by the plain
// (non-embedded) repository index format (spec.md §4.2,
// original_source's schema_pkginfo_array).
var PkgInfoArray = &adbschema.ArraySchema{
	Element:   PkgInfo,
	MaxFields: defaultMaxIndexPkgs,
	PreCommit: adbschema.Sort,
}

// Index is a repository index: a description plus its package list
// (spec.md §4.2, original_source's schema_index).
var Index = &adbschema.ObjectSchema{
	NumFields: 2,
	Fields: []adbschema.FieldDef{
		{Index: NdxDescription, Name: "description", Schema: adbscalar.String},
		{Index: NdxPackages, Name: "packages", Schema: PkgInfoArray},
	},
}

// InstalledDB field indices.
const IdbPackages = 0

// InstalledDB is the local installed-package database: a vector of
// embedded Package sub-databases (spec.md §4.2, original_source's
// schema_idb).
var InstalledDB = &adbschema.ObjectSchema{
	NumFields: 1,
	Fields: []adbschema.FieldDef{
		{Index: IdbPackages, Name: "packages", Schema: PackageArray},
	},
}

// Schema IDs for the embedded/top-level ADB containers this package
// defines, stored in a database's serialized header (spec.md §4.6).
const (
	SchemaPackage = iota + 1
	SchemaIndex
	SchemaInstalledDB
)
