package web

import (
	"fmt"
	"html/template"
	"time"

	"recipebox/internal/utils"
)

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo":  TimeAgo,
		"markdown": utils.RenderMarkdown,
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TimeAgo renders t relative to now, e.g. "3 hours ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}
