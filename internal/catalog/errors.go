package catalog

import "errors"

// ErrEmptyCatalog indicates a catalog was built with no versions.
var ErrEmptyCatalog = errors.New("catalog has no versions")

// ErrInvalidVersion indicates a version string is not dot-separated non-negative integers.
var ErrInvalidVersion = errors.New("invalid version string")

// ErrDuplicateVersion indicates the same version was declared twice.
var ErrDuplicateVersion = errors.New("duplicate version in catalog")

// ErrDuplicateScript indicates two scripts in one version share an id.
var ErrDuplicateScript = errors.New("duplicate script id")

// ErrNoForwardScripts indicates a version declares no forward scripts.
var ErrNoForwardScripts = errors.New("version has no forward scripts")

// ErrUnknownVersion indicates a requested version is not in the catalog.
var ErrUnknownVersion = errors.New("version not found in catalog")
