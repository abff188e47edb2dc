package apiclient

// Employee mirrors the backend's employee document.
type Employee struct {
	ID                  string   `json:"_id,omitempty"`
	Name                string   `json:"name"`
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	Department          string   `json:"department"`
	Position            string   `json:"position"`
	RiskLevel           string   `json:"risk_level"`
	TurnoverProbability float64  `json:"turnover_probability"`
	Email               string   `json:"email"`
	HireDate            string   `json:"hire_date"`
	Salary              float64  `json:"salary"`
	PerformanceScore    float64  `json:"performance_score"`
	LastEvaluationDate  string   `json:"last_evaluation_date"`
	Projects            []string `json:"projects"`
	Skills              []string `json:"skills"`

	Age               float64 `json:"age,omitempty"`
	YearsOfExperience float64 `json:"years_of_experience,omitempty"`
	WorkHours         float64 `json:"work_hours,omitempty"`
	TrainingHours     float64 `json:"training_hours,omitempty"`
}

// Stats is the dashboard statistics snapshot.
type Stats struct {
	TotalEmployees         int               `json:"total_employees"`
	HighRiskCount          int               `json:"high_risk_count"`
	MediumRiskCount        int               `json:"medium_risk_count"`
	LowRiskCount           int               `json:"low_risk_count"`
	AverageRisk            float64           `json:"average_risk"`
	DepartmentCount        int               `json:"department_count"`
	DepartmentDistribution []DepartmentCount `json:"department_distribution"`
	RiskTrends             *RiskTrends       `json:"risk_trends,omitempty"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// RiskTrends are month-over-month deltas in percent.
type RiskTrends struct {
	High    float64 `json:"high"`
	Average float64 `json:"average"`
}

// DepartmentRisk is one row of the department-risk breakdown. The backend
// names the department field _id.
type DepartmentRisk struct {
	Department       string      `json:"_id"`
	RiskDistribution []RiskCount `json:"risk_distribution"`
}

type RiskCount struct {
	RiskLevel string `json:"risk_level"`
	Count     int    `json:"count"`
}

// Download is an exported file ready to hand to the browser.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}
