package devapi

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

type seedFile struct {
	Employees []seedEmployee `yaml:"employees"`
}

type seedEmployee struct {
	Name                string   `yaml:"name"`
	FirstName           string   `yaml:"first_name"`
	LastName            string   `yaml:"last_name"`
	Department          string   `yaml:"department"`
	Position            string   `yaml:"position"`
	RiskLevel           string   `yaml:"risk_level"`
	TurnoverProbability float64  `yaml:"turnover_probability"`
	Email               string   `yaml:"email"`
	HireDate            string   `yaml:"hire_date"`
	Salary              float64  `yaml:"salary"`
	PerformanceScore    float64  `yaml:"performance_score"`
	LastEvaluationDate  string   `yaml:"last_evaluation_date"`
	Projects            []string `yaml:"projects"`
	Skills              []string `yaml:"skills"`
	Age                 float64  `yaml:"age"`
	YearsOfExperience   float64  `yaml:"years_of_experience"`
	WorkHours           float64  `yaml:"work_hours"`
	TrainingHours       float64  `yaml:"training_hours"`
}

func (e seedEmployee) employee() apiclient.Employee {
	return apiclient.Employee{
		Name:                e.Name,
		FirstName:           e.FirstName,
		LastName:            e.LastName,
		Department:          e.Department,
		Position:            e.Position,
		RiskLevel:           e.RiskLevel,
		TurnoverProbability: e.TurnoverProbability,
		Email:               e.Email,
		HireDate:            e.HireDate,
		Salary:              e.Salary,
		PerformanceScore:    e.PerformanceScore,
		LastEvaluationDate:  e.LastEvaluationDate,
		Projects:            e.Projects,
		Skills:              e.Skills,
		Age:                 e.Age,
		YearsOfExperience:   e.YearsOfExperience,
		WorkHours:           e.WorkHours,
		TrainingHours:       e.TrainingHours,
	}
}

func readSeed(path string) ([]apiclient.Employee, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	out := make([]apiclient.Employee, 0, len(file.Employees))
	for _, e := range file.Employees {
		out = append(out, normalizeEmployee(e.employee()))
	}
	return out, nil
}

// seedIfEmpty loads the roster at path when the employees table has no rows.
// It returns how many employees were inserted.
func (s *sqliteStore) seedIfEmpty(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	n, err := s.countEmployees(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	list, err := readSeed(path)
	if err != nil {
		return 0, err
	}
	for i, e := range list {
		if _, err := s.createEmployee(ctx, e); err != nil {
			return i, fmt.Errorf("seed employee %q: %w", e.Name, err)
		}
	}
	return len(list), nil
}
