// Package pairs parses and holds the ordered source-to-target index work list.
package pairs

import (
	"strings"

	"github.com/dataops-tools/escopy/errors"
)

// IndexMapping is one unit of work: copy sourceName into targetName.
type IndexMapping struct {
	Source string
	Target string
}

func (m IndexMapping) String() string {
	return m.Source + " -> " + m.Target
}

// Parse converts a comma-separated list of "source:target" entries into an
// ordered work list. A bare "name" entry is shorthand for "name:name".
// A repeated source keeps its original position but takes the last target.
func Parse(spec string) ([]IndexMapping, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, errors.New("no index mappings specified")
	}

	pos := make(map[string]int)
	list := make([]IndexMapping, 0)

	for entry := range strings.SplitSeq(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		source, target, found := strings.Cut(entry, ":")
		source = strings.TrimSpace(source)
		target = strings.TrimSpace(target)

		if !found {
			target = source
		}

		if source == "" || target == "" {
			return nil, errors.Errorf("invalid index mapping entry %q", entry)
		}

		if i, ok := pos[source]; ok {
			list[i].Target = target

			continue
		}

		pos[source] = len(list)
		list = append(list, IndexMapping{Source: source, Target: target})
	}

	if len(list) == 0 {
		return nil, errors.New("no valid index mappings found")
	}

	return list, nil
}
