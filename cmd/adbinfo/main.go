// Command adbinfo is the `info` applet: it renders selected fields of one
// or more packages out of an installed-package database, mirroring
// original_source's app_info.c.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alpinelinux/goadb/internal/adblayout"
	"github.com/alpinelinux/goadb/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds and executes the root command, returning the accumulated
// error count as the process exit code, separated from main() to
// facilitate testing.
func run(args []string) int {
	var opts infoOptions
	var rootPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:           "adbinfo [packages...]",
		Short:         "Show information about installed packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(logging.Config{Level: logLevel, Format: "console", Output: "stderr"})
			layout, err := adblayout.Open(adblayout.DefaultOptions(rootPath))
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: opening root %q: %v\n", rootPath, err)
				return errExit{1}
			}

			errs, err := runInfo(cmd.OutOrStdout(), log, layout, opts, args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
				errs++
			}
			if errs > 0 {
				return errExit{errs}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootPath, "root", "/", "managed package root")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "print all field types")
	cmd.Flags().BoolVarP(&opts.Contents, "contents", "L", false, "(removed) list files owned by package")
	cmd.Flags().BoolVarP(&opts.Depends, "depends", "R", false, "print dependencies")
	cmd.Flags().BoolVarP(&opts.Description, "description", "d", false, "print description")
	cmd.Flags().BoolVar(&opts.InstallIf, "install-if", false, "print install_if rule")
	cmd.Flags().BoolVarP(&opts.Installed, "installed", "e", false, "check if given dependency is satisfied")
	cmd.Flags().BoolVar(&opts.License, "license", false, "print license")
	cmd.Flags().BoolVar(&opts.Maintainer, "maintainer", false, "print maintainer")
	cmd.Flags().BoolVar(&opts.Origin, "origin", false, "print origin package name")
	cmd.Flags().BoolVarP(&opts.Provides, "provides", "P", false, "print provides")
	cmd.Flags().BoolVarP(&opts.RDepends, "rdepends", "r", false, "print reverse dependencies")
	cmd.Flags().BoolVar(&opts.Replaces, "replaces", false, "print replaces")
	cmd.Flags().BoolVar(&opts.RInstallIf, "rinstall-if", false, "print reverse install_if rule")
	cmd.Flags().BoolVarP(&opts.Size, "size", "s", false, "print size")
	cmd.Flags().BoolVarP(&opts.Triggers, "triggers", "t", false, "print triggers")
	cmd.Flags().BoolVarP(&opts.Webpage, "webpage", "w", false, "print URL")
	cmd.Flags().BoolVarP(&opts.WhoOwns, "who-owns", "W", false, "print who owns the file(s)")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if ee, ok := err.(errExit); ok {
			return ee.code
		}
		return 1
	}
	return 0
}

// errExit carries a non-zero exit code (the accumulated error count)
// through cobra's error-returning RunE without cobra printing it again.
type errExit struct{ code int }

func (e errExit) Error() string { return fmt.Sprintf("%d error(s)", e.code) }
