package progress

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

var (
	moduleToken = regexp.MustCompile(`(?i)module[\s_-]*(\d+)`)
	objectID    = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// ResolveModule returns the module (1..MaxModules) a lesson counts toward.
// A non-zero explicit module wins. Otherwise the module is guessed from the
// lesson ID:
//
//   - a "module N" token gives N;
//   - a 24-char hex document ID gives (last char code point mod 3) + 1;
//   - anything else uses the last char as a digit d (1 if not a digit)
//     and gives ceil(d/3).
//
// The guess can misattribute lessons. Existing data was counted with these
// exact rules, so they must not change.
func ResolveModule(lessonID string, explicit int) int {
	if explicit != 0 {
		return clampModule(explicit)
	}

	if m := moduleToken.FindStringSubmatch(lessonID); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return MaxModules
		}
		return clampModule(n)
	}

	if objectID.MatchString(lessonID) {
		last, _ := utf8.DecodeLastRuneInString(lessonID)
		return int(last)%MaxModules + 1
	}

	d := 1
	if last, _ := utf8.DecodeLastRuneInString(lessonID); last >= '1' && last <= '9' {
		d = int(last - '0')
	}
	return clampModule((d + 2) / 3)
}

func clampModule(m int) int {
	if m < 1 {
		return 1
	}
	if m > MaxModules {
		return MaxModules
	}
	return m
}
