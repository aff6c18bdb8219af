package planner

// MacroTargets are a user's daily goals
type MacroTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MacroProgress is a day's totals expressed as percentages of the targets
type MacroProgress struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// WeeklySummary sums a run of days and averages them per day
type WeeklySummary struct {
	Days            int `json:"days"`
	TotalCalories   int `json:"totalCalories"`
	TotalProtein    int `json:"totalProtein"`
	TotalCarbs      int `json:"totalCarbs"`
	TotalFat        int `json:"totalFat"`
	AverageCalories int `json:"averageCalories"`
	AverageProtein  int `json:"averageProtein"`
	AverageCarbs    int `json:"averageCarbs"`
	AverageFat      int `json:"averageFat"`
}

// Progress maps each day's totals to percent of target. A non-positive target
// yields 0 for that macro.
func Progress(totals []DailyMacroTotals, targets MacroTargets) []MacroProgress {
	progress := make([]MacroProgress, 0, len(totals))
	for _, t := range totals {
		progress = append(progress, MacroProgress{
			Date:     t.Date,
			Calories: percent(t.TotalCalories, targets.Calories),
			Protein:  percent(t.TotalProtein, targets.Protein),
			Carbs:    percent(t.TotalCarbs, targets.Carbs),
			Fat:      percent(t.TotalFat, targets.Fat),
		})
	}
	return progress
}

// SummarizeWeek totals the given days and computes rounded daily averages
func SummarizeWeek(totals []DailyMacroTotals) WeeklySummary {
	summary := WeeklySummary{Days: len(totals)}
	for _, t := range totals {
		summary.TotalCalories += t.TotalCalories
		summary.TotalProtein += t.TotalProtein
		summary.TotalCarbs += t.TotalCarbs
		summary.TotalFat += t.TotalFat
	}
	if summary.Days == 0 {
		return summary
	}

	days := float64(summary.Days)
	summary.AverageCalories = round(float64(summary.TotalCalories) / days)
	summary.AverageProtein = round(float64(summary.TotalProtein) / days)
	summary.AverageCarbs = round(float64(summary.TotalCarbs) / days)
	summary.AverageFat = round(float64(summary.TotalFat) / days)
	return summary
}

func percent(value int, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return float64(value) / target * 100
}
