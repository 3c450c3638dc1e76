// calllog/filter.go

package calllog

import "strings"

// Filter narrows a viewer's result set. All conditions are conjunctive:
// exact level match when Level is set, case-insensitive substring match
// against url, method, error and both bodies when Search is set, and a
// "most recent N after filtering" cap when Limit is positive.
type Filter struct {
	Level  Level  `json:"level,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Apply is pure over the input slice; entries keep their insertion order.
func (f Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	needle := strings.ToLower(f.Search)
	for _, e := range entries {
		if f.Level != "" && e.Level != f.Level {
			continue
		}
		if needle != "" && !matches(e, needle) {
			continue
		}
		out = append(out, e)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

func matches(e Entry, needle string) bool {
	for _, field := range []string{e.URL, e.Method, e.Error, e.RequestBody, e.ResponseBody} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
