package progress

import "time"

// Free-tier limits and rewards.
const (
	MaxModules       = 3
	LessonsPerModule = 3

	LessonXP      = 100
	LessonYuCoins = 10

	AchievementBonusXP      = 250
	AchievementBonusYuCoins = 125

	DefaultHearts    = 3
	DefaultDailyGoal = 100
)

// Record is the full persisted progress of one learner.
type Record struct {
	UserID           string                 `json:"userId"`
	GradeID          string                 `json:"gradeId"`
	XP               int                    `json:"xp"`
	Level            int                    `json:"level"`
	MaxXP            int                    `json:"maxXp"`
	YuCoins          int                    `json:"yuCoins"`
	Streak           int                    `json:"streak"`
	Hearts           int                    `json:"hearts"`
	MaxHearts        int                    `json:"maxHearts"`
	CompletedLessons []CompletedLesson      `json:"completedLessons"`
	CurrentModule    int                    `json:"currentModule"`
	ByModule         map[int]ModuleProgress `json:"byModule"`
	Achievements     []Achievement          `json:"achievements"`
	DailyGoal        int                    `json:"dailyGoal"`
	DailyProgress    int                    `json:"dailyProgress"`
	LastActivity     time.Time              `json:"lastActivity"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// CompletedLesson is one entry of a learner's completion history.
type CompletedLesson struct {
	LessonID      string    `json:"lessonId"`
	Score         int       `json:"score"`
	TimeSpent     int       `json:"timeSpent"`
	CompletedAt   time.Time `json:"completedAt"`
	XPEarned      int       `json:"xpEarned"`
	YuCoinsEarned int       `json:"yuCoinsEarned"`
	Module        int       `json:"module"`
}

// ModuleProgress counts completed lessons against the module's lesson total.
type ModuleProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Achievement is a one-time unlock.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// LessonResult is what a learner submits when finishing a lesson.
// Module is optional; zero means "derive it from LessonID".
type LessonResult struct {
	LessonID  string `json:"lessonId"`
	Score     int    `json:"score"`
	TimeSpent int    `json:"timeSpent"`
	Module    int    `json:"module,omitempty"`
}

// Stats is a read-only summary of a learner's record.
type Stats struct {
	TotalLessons      int `json:"totalLessons"`
	CompletedLessons  int `json:"completedLessons"`
	CompletionPercent int `json:"completionPercentage"`
	XP                int `json:"xp"`
	YuCoins           int `json:"yuCoins"`
	Streak            int `json:"streak"`
	Level             int `json:"level"`
	Achievements      int `json:"achievements"`
}

// HasCompleted reports whether lessonID is already in the completion history.
func (r *Record) HasCompleted(lessonID string) bool {
	for _, c := range r.CompletedLessons {
		if c.LessonID == lessonID {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement id has been earned.
func (r *Record) HasAchievement(id string) bool {
	for _, a := range r.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// recountModules rebuilds ByModule from CompletedLessons.
func (r *Record) recountModules() {
	counts := make(map[int]int, MaxModules)
	for _, c := range r.CompletedLessons {
		counts[c.Module]++
	}
	byModule := make(map[int]ModuleProgress, MaxModules)
	for m := 1; m <= MaxModules; m++ {
		byModule[m] = ModuleProgress{Completed: counts[m], Total: LessonsPerModule}
	}
	r.ByModule = byModule
}

// newRecord returns a zeroed record for a learner.
func newRecord(userID, gradeID string, now time.Time) *Record {
	byModule := make(map[int]ModuleProgress, MaxModules)
	for m := 1; m <= MaxModules; m++ {
		byModule[m] = ModuleProgress{}
	}
	return &Record{
		UserID:           userID,
		GradeID:          gradeID,
		Level:            1,
		MaxXP:            LevelThreshold(1),
		Hearts:           DefaultHearts,
		MaxHearts:        DefaultHearts,
		CompletedLessons: []CompletedLesson{},
		CurrentModule:    1,
		ByModule:         byModule,
		Achievements:     []Achievement{},
		DailyGoal:        DefaultDailyGoal,
		LastActivity:     now,
		CreatedAt:        now,
	}
}
