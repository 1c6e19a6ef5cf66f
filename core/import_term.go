package core

// ImportMode selects how the resolver turns fetched bytes into a Term.
type ImportMode int

const (
	Code ImportMode = iota
	RawText
	Location
)

// ImportPathKind distinguishes the four import path variants.
type ImportPathKind int

const (
	LocalPath ImportPathKind = iota
	RemotePath
	EnvPath
	MissingPath
)

// LocalKind distinguishes the four ways a local path may be anchored.
type LocalKind int

const (
	Absolute LocalKind = iota
	RelativeToCwd
	RelativeToParent
	RelativeToHome
)

// RemoteScheme is http or https.
type RemoteScheme int

const (
	HTTP RemoteScheme = iota
	HTTPS
)

// ImportHashed is the integrity-checked, cacheable part of an Import: the
// path plus an optional declared semantic hash.
type ImportHashed struct {
	Hash       []byte // 32-byte sha256 digest, or nil if unchecked
	PathKind   ImportPathKind
	LocalKind  LocalKind      // meaningful when PathKind == LocalPath
	Scheme     RemoteScheme   // meaningful when PathKind == RemotePath
	Components []string       // path segments, or a single name for EnvPath
	Authority  string         // remote authority (host[:port])
	Query      string         // optional remote query string
	Headers    Term           // optional headers expression, `List {mapKey,mapValue}`
}

// Import is an unresolved import reference, replaced by the resolver with
// the fetched, parsed (or Text/Location) expression.
type Import struct {
	ImportHashed
	Mode ImportMode
}

// Local constructs a root Import used to seed an import resolution's parent
// chain for a path that was loaded directly rather than itself fetched via
// import.
func Local(path string) Import {
	return Import{
		ImportHashed: ImportHashed{
			PathKind:   LocalPath,
			LocalKind:  Absolute,
			Components: splitLocalPath(path),
		},
		Mode: Code,
	}
}

func splitLocalPath(path string) []string {
	var parts []string
	cur := ""
	for _, r := range path {
		if r == '/' {
			if cur != "" {
				parts = append(parts, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		parts = append(parts, cur)
	}
	return parts
}
