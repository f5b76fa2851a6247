package progress

import "testing"

func TestResolveModule(t *testing.T) {
	tests := []struct {
		name     string
		lessonID string
		explicit int
		want     int
	}{
		{"explicit wins", "lessonA_module1", 2, 2},
		{"explicit clamped high", "x", 7, 3},
		{"explicit clamped low", "x", -1, 1},
		{"module token", "lessonA_module1", 0, 1},
		{"module token upper", "MODULE3-intro", 0, 3},
		{"module token with space", "Module 2 lesson", 0, 2},
		{"module token dash", "module-2", 0, 2},
		{"module token clamped", "module9_lesson", 0, 3},
		{"module token zero", "module0", 0, 1},
		{"module token overflow", "module99999999999999999999999", 0, 3},
		{"object id ending 1", "507f1f77bcf86cd799439011", 0, 2},  // '1' = 49
		{"object id ending a", "507f1f77bcf86cd79943901a", 0, 2},  // 'a' = 97
		{"object id ending b", "507f1f77bcf86cd79943901b", 0, 3},  // 'b' = 98
		{"object id ending c", "507f1f77bcf86cd79943901c", 0, 1},  // 'c' = 99
		{"object id uppercase", "507F1F77BCF86CD79943901C", 0, 2}, // 'C' = 67
		{"digit 1", "lesson-1", 0, 1},
		{"digit 3", "lesson-3", 0, 1},
		{"digit 4", "lesson-4", 0, 2},
		{"digit 6", "lesson-6", 0, 2},
		{"digit 7", "lesson-7", 0, 3},
		{"digit 9", "lesson-9", 0, 3},
		{"digit 0", "lesson-10", 0, 1},
		{"no digit", "intro", 0, 1},
		{"empty", "", 0, 1},
		{"23 hex chars", "507f1f77bcf86cd79943901", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveModule(tt.lessonID, tt.explicit)
			if got != tt.want {
				t.Errorf("ResolveModule(%q, %d) = %d, want %d", tt.lessonID, tt.explicit, got, tt.want)
			}
		})
	}
}

func TestResolveModuleDeterministic(t *testing.T) {
	ids := []string{"a", "lesson-5", "507f1f77bcf86cd799439011", "module2", "zzz"}
	for _, id := range ids {
		first := ResolveModule(id, 0)
		for i := 0; i < 10; i++ {
			if got := ResolveModule(id, 0); got != first {
				t.Fatalf("ResolveModule(%q) not deterministic: %d then %d", id, first, got)
			}
		}
		if first < 1 || first > MaxModules {
			t.Errorf("ResolveModule(%q) = %d, out of range", id, first)
		}
	}
}
