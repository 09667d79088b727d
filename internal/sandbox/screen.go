package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// bannedPattern is one syntax pattern that rejects generated source before
// any process is spawned. The patterns cover filesystem writes, process
// spawning, networking, and dynamic-eval primitives. Static screening is
// defense in depth; the binding boundary is process isolation, the import
// allow-list, and the timeout.
type bannedPattern struct {
	name string
	re   *regexp.Regexp
}

var bannedPatterns = []bannedPattern{
	{"subprocess", regexp.MustCompile(`\bsubprocess\b`)},
	{"os.system", regexp.MustCompile(`\bos\s*\.\s*(system|popen|exec[lv]p?e?|spawn)\b`)},
	{"os.remove", regexp.MustCompile(`\bos\s*\.\s*(remove|unlink|rmdir|rename|chmod|makedirs|mkdir)\b`)},
	{"eval", regexp.MustCompile(`\beval\s*\(`)},
	{"exec", regexp.MustCompile(`\bexec\s*\(`)},
	{"compile", regexp.MustCompile(`\bcompile\s*\(`)},
	{"__import__", regexp.MustCompile(`__import__`)},
	{"importlib", regexp.MustCompile(`\bimportlib\b`)},
	{"globals", regexp.MustCompile(`\bglobals\s*\(`)},
	{"builtins", regexp.MustCompile(`__builtins__`)},
	{"socket", regexp.MustCompile(`\bsocket\b`)},
	{"urllib", regexp.MustCompile(`\burllib\b`)},
	{"requests", regexp.MustCompile(`\brequests\b`)},
	{"shutil", regexp.MustCompile(`\bshutil\b`)},
	{"ctypes", regexp.MustCompile(`\bctypes\b`)},
	{"open-for-write", regexp.MustCompile(`\bopen\s*\([^)]*["'](?:[wax]b?\+?|rb?\+)["']`)},
	{"pathlib-write", regexp.MustCompile(`\.\s*write_(text|bytes)\s*\(`)},
	{"sys.modules", regexp.MustCompile(`\bsys\s*\.\s*modules\b`)},
}

// importAllowLists maps a renderer subtype to the modules its generated
// source may import. Submodules of an allowed module are allowed.
var importAllowLists = map[string][]string{
	"pyplot":          {"matplotlib", "mpl_toolkits", "numpy", "math"},
	"schemdraw":       {"schemdraw", "matplotlib", "math"},
	"schemdraw-logic": {"schemdraw", "matplotlib", "math"},
	"networkx":        {"networkx", "matplotlib", "numpy", "math"},
}

// reImport matches both import forms at line start and captures the root
// module name.
var reImport = regexp.MustCompile(`(?m)^[ \t]*(?:import|from)[ \t]+([A-Za-z_][\w.]*)`)

// Screen statically validates generated source for a subtype. It returns a
// *Error with Kind ErrDisallowedPattern on the first violation, nil when
// the source is clean. Screen never touches the filesystem.
func Screen(source, subtype string) error {
	for _, p := range bannedPatterns {
		if p.re.MatchString(source) {
			return &Error{
				Kind:   ErrDisallowedPattern,
				Detail: fmt.Sprintf("banned pattern %q", p.name),
			}
		}
	}

	allowed, ok := importAllowLists[subtype]
	if !ok {
		return &Error{
			Kind:   ErrDisallowedPattern,
			Detail: fmt.Sprintf("no import allow-list for subtype %q", subtype),
		}
	}

	for _, m := range reImport.FindAllStringSubmatch(source, -1) {
		root := strings.SplitN(m[1], ".", 2)[0]
		if !contains(allowed, root) {
			return &Error{
				Kind:   ErrDisallowedPattern,
				Detail: fmt.Sprintf("import %q outside the %s allow-list", m[1], subtype),
			}
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
