// Package config discovers the enclosing project root and loads polint's
// layered configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/jiangxin/goconfig"
)

// project wraps the discovered repository root used to anchor relative
// rule/entity search paths and the default config file location.
type project struct {
	repository *goconfig.Repository
	err        error
}

var theProject project

// Open locates the enclosing git worktree starting from dir ("" means the
// current working directory), the way the teacher's repository.OpenRepository
// locates a git worktree. Catalogs and their rule/entity files conventionally
// live inside one, so its root anchors relative search paths.
func Open(dir string) {
	theProject.repository, theProject.err = goconfig.FindRepository(dir)
}

// Opened reports whether a project root was found.
func Opened() bool {
	return theProject.err == nil && theProject.repository != nil
}

// Err returns the error from the last Open call.
func Err() error {
	return theProject.err
}

// RootOrCwd returns the project root when one was found, otherwise the
// current working directory. Commands that accept explicit catalog paths
// can run outside of a project root by falling back to cwd.
func RootOrCwd() string {
	if Opened() {
		return theProject.repository.WorkDir()
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// RequireOpened returns an error describing why no project root is
// available, or nil if one is.
func RequireOpened() error {
	if Opened() {
		return nil
	}
	if theProject.err != nil {
		return theProject.err
	}
	return fmt.Errorf("not inside a git worktree")
}
