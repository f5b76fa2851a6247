package progress

// Dashboard is the shape the dashboard renders for a free-tier learner.
type Dashboard struct {
	Grade      string  `json:"grade"`
	Progress   *Record `json:"progress"`
	DevMode    bool    `json:"devMode"`
	IsGratuito bool    `json:"isGratuito"`
	MaxModules int     `json:"maxModules"`
}

// FormatDashboard reshapes a record for display.
func FormatDashboard(rec *Record) Dashboard {
	d := Dashboard{
		Progress:   rec,
		IsGratuito: true,
		MaxModules: MaxModules,
	}
	if rec != nil {
		d.Grade = rec.GradeID
	}
	return d
}

// XPFraction is the share of the level's XP threshold reached, in [0,1].
func (r *Record) XPFraction() float64 {
	if r.MaxXP <= 0 {
		return 0
	}
	f := float64(r.XP) / float64(r.MaxXP)
	if f > 1 {
		return 1
	}
	return f
}

// ModuleFraction is the share of a module's lessons completed, in [0,1].
func (r *Record) ModuleFraction(module int) float64 {
	p := r.ByModule[module]
	total := p.Total
	if total <= 0 {
		total = LessonsPerModule
	}
	f := float64(p.Completed) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}

// DailyFraction is the share of the daily XP goal reached, in [0,1].
func (r *Record) DailyFraction() float64 {
	if r.DailyGoal <= 0 {
		return 0
	}
	f := float64(r.DailyProgress) / float64(r.DailyGoal)
	if f > 1 {
		return 1
	}
	return f
}
