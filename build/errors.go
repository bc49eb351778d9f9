package build

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNoArchives           = errors.New("no archives were produced")
	ErrArchiveNameCollision = errors.New("archive file name collision")
)

// DirtyCheckoutError is returned when the working copy has local modifications right after checkout.
type DirtyCheckoutError struct {
	Dir     string
	Changes []string
}

func (e *DirtyCheckoutError) Error() string {
	return fmt.Sprintf("the checkout at '%s' has local modifications after checkout; remove them or delete the directory and rerun:\n%s",
		e.Dir, strings.Join(e.Changes, "\n"))
}

// WorkspaceLayoutError is returned when no workspace carries the expected scope.
type WorkspaceLayoutError struct {
	Scope string
	// Found lists the workspace locations and package directories that exist instead.
	Found []string
}

func (e *WorkspaceLayoutError) Error() string {
	found := "none"
	if len(e.Found) > 0 {
		found = strings.Join(e.Found, ", ")
	}
	return fmt.Sprintf("no workspaces found in scope '%s'. The expected package layout is absent, found: %s", e.Scope, found)
}

// UnknownPackageError is returned when a requested package isn't one of the matched workspaces.
type UnknownPackageError struct {
	Package   string
	Available []string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("package '%s' was not found among the workspaces: %s", e.Package, strings.Join(e.Available, ", "))
}
