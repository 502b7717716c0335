package safety

// Features is the model input for one (user context, food) pair. Field order
// matches FeatureNames.
type Features struct {
	GlucoseLevel  float64
	GlucoseAvg    float64
	GlucoseTrend  float64
	PregnancyWeek float64
	Intensity     float64
	TimeOfDay     float64
	FoodGI        float64
	FoodCarbs     float64
	FoodSugar     float64
}

// FeatureNames are the column names the model artifact splits on.
var FeatureNames = []string{
	"glucose_level",
	"glucose_avg",
	"glucose_trend",
	"pregnancy_week",
	"intensity",
	"time_of_day",
	"food_gi",
	"food_carbs",
	"food_sugar",
}

// featureIndex maps a column name to its position in Vector.
var featureIndex = func() map[string]int {
	m := make(map[string]int, len(FeatureNames))
	for i, n := range FeatureNames {
		m[n] = i
	}
	return m
}()

// Vector returns the features in FeatureNames order.
func (f Features) Vector() []float64 {
	return []float64{
		f.GlucoseLevel,
		f.GlucoseAvg,
		f.GlucoseTrend,
		f.PregnancyWeek,
		f.Intensity,
		f.TimeOfDay,
		f.FoodGI,
		f.FoodCarbs,
		f.FoodSugar,
	}
}
