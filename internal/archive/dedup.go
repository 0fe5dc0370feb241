package archive

import (
	"strconv"
	"strings"
)

// NameSet tracks the entry names already assigned within one archive job.
// It is created per job and discarded with it.
type NameSet map[string]struct{}

func NewNameSet() NameSet {
	return make(NameSet)
}

// Unique returns a name guaranteed not to have been assigned before and
// records it. The first occurrence of a name is kept unchanged; later
// collisions probe stem_1.ext, stem_2.ext, ... until a free name is found.
// The counter is unbounded, so Unique always terminates.
func (s NameSet) Unique(name string) string {
	if _, taken := s[name]; !taken {
		s[name] = struct{}{}
		return name
	}

	stem, ext := splitName(name)
	for n := 1; ; n++ {
		candidate := stem + "_" + strconv.Itoa(n) + ext
		if _, taken := s[candidate]; !taken {
			s[candidate] = struct{}{}
			return candidate
		}
	}
}

// splitName splits a file name at its last dot. A dot at position 0
// (".env") belongs to the stem, so hidden files collide into ".env_1"
// rather than producing an empty stem.
func splitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}
