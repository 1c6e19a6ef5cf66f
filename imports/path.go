package imports

import (
	"strings"

	"github.com/dhall-run/dhall-go/core"
)

// canonicalize chains imp onto parent per spec.md §4.4 step 1: a
// relative-to-cwd/parent/home local path is rewritten to an absolute one
// by resolving it against parent's directory, and a local or environment
// import reached through a remote parent is rejected outright (the
// referential-transparency rule: a remote document can only pull in other
// remote documents, never read its importer's filesystem or environment).
func canonicalize(imp, parent core.Import) (core.Import, error) {
	if imp.PathKind == core.LocalPath || imp.PathKind == core.EnvPath {
		if parent.PathKind == core.RemotePath {
			return core.Import{}, &core.ImportError{
				Kind:   core.ImportBanned,
				Source: renderImport(imp),
			}
		}
	}
	if imp.PathKind != core.LocalPath || imp.LocalKind == core.Absolute {
		return imp, nil
	}
	base := parentDirComponents(parent)
	out := imp
	out.Components = joinRelative(base, imp.Components)
	out.LocalKind = core.Absolute
	return out, nil
}

// parentDirComponents returns the directory (all but the final path
// component, the file name) that a relative child import resolves
// against. A parent that is itself relative has already been canonicalized
// by the time it reaches here, since every import is canonicalized before
// being pushed onto the parent chain.
func parentDirComponents(parent core.Import) []string {
	switch parent.PathKind {
	case core.LocalPath:
		if len(parent.Components) == 0 {
			return nil
		}
		return append([]string{}, parent.Components[:len(parent.Components)-1]...)
	case core.RemotePath:
		if len(parent.Components) == 0 {
			return nil
		}
		return append([]string{}, parent.Components[:len(parent.Components)-1]...)
	default:
		return nil
	}
}

// joinRelative applies "." and ".." segments of rel against base the way a
// filesystem path join does, without ever touching the real filesystem.
func joinRelative(base, rel []string) []string {
	out := append([]string{}, base...)
	for _, seg := range rel {
		switch seg {
		case ".":
			// no-op
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return out
}

// cacheKey is the canonical-path fallback used when an import carries no
// declared integrity hash (spec.md §4.4 step 2).
func cacheKey(imp core.Import) string {
	switch imp.PathKind {
	case core.LocalPath:
		return "local:/" + strings.Join(imp.Components, "/")
	case core.RemotePath:
		scheme := "http"
		if imp.Scheme == core.HTTPS {
			scheme = "https"
		}
		key := scheme + "://" + imp.Authority + "/" + strings.Join(imp.Components, "/")
		if imp.Query != "" {
			key += "?" + imp.Query
		}
		return key
	case core.EnvPath:
		name := ""
		if len(imp.Components) > 0 {
			name = imp.Components[0]
		}
		return "env:" + name
	default:
		return "missing:"
	}
}

// origin returns the CORS origin of a remote import ("scheme://authority"),
// or "" for a non-remote one.
func origin(imp core.Import) string {
	if imp.PathKind != core.RemotePath {
		return ""
	}
	scheme := "http"
	if imp.Scheme == core.HTTPS {
		scheme = "https"
	}
	return scheme + "://" + imp.Authority
}

func renderImport(imp core.Import) string {
	switch imp.PathKind {
	case core.LocalPath:
		return "/" + strings.Join(imp.Components, "/")
	case core.RemotePath:
		return cacheKey(imp)
	case core.EnvPath:
		return cacheKey(imp)
	default:
		return "missing"
	}
}

// isIPFSPath reports whether imp is an absolute local path whose first
// component is the special "ipfs" or "ipns" root that falls back through
// the gateway chain (spec.md §4.4's IPFS special case) instead of reading
// the real filesystem directly.
func isIPFSPath(imp core.Import) bool {
	if imp.PathKind != core.LocalPath || imp.LocalKind != core.Absolute {
		return false
	}
	if len(imp.Components) == 0 {
		return false
	}
	return imp.Components[0] == "ipfs" || imp.Components[0] == "ipns"
}
