package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"thesistrack/backend/model"
)

var (
	// ErrDeadlineInPast is returned when a deadline or one of its
	// derived deadlines would land in the past.
	ErrDeadlineInPast = errors.New("deadline date must be in the future")
)

// DeadlineService creates deadlines, deriving the submission and review
// deadlines when a defense deadline is scheduled.
type DeadlineService struct {
	db *gorm.DB
}

// NewDeadlineService creates a new deadline service
func NewDeadlineService(db *gorm.DB) *DeadlineService {
	return &DeadlineService{db: db}
}

// DeadlineInput carries the fields needed to create a deadline
type DeadlineInput struct {
	Title        string
	Description  string
	Location     string
	DeadlineType model.DeadlineType
	DeadlineDate time.Time
	IsGlobal     bool
	CreatedBy    string
}

// Create persists the deadline. A defense deadline additionally creates
// a submission deadline one week earlier and a review deadline two days
// earlier, all in one transaction. If any derived date has already
// passed, nothing is created.
func (s *DeadlineService) Create(input DeadlineInput) ([]model.Deadline, error) {
	now := time.Now()
	if !input.DeadlineDate.After(now) {
		return nil, ErrDeadlineInPast
	}

	rows := []model.Deadline{{
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		DeadlineType: input.DeadlineType,
		DeadlineDate: input.DeadlineDate,
		IsActive:     true,
		IsGlobal:     input.IsGlobal,
		CreatedBy:    input.CreatedBy,
	}}

	if input.DeadlineType == model.DeadlineDefense {
		submissionDate := input.DeadlineDate.AddDate(0, 0, -7)
		reviewDate := input.DeadlineDate.AddDate(0, 0, -2)
		if !submissionDate.After(now) || !reviewDate.After(now) {
			return nil, fmt.Errorf("%w: derived submission and review deadlines must also be in the future", ErrDeadlineInPast)
		}

		rows = append(rows,
			model.Deadline{
				Title:        fmt.Sprintf("Submission deadline for %s", input.Title),
				Description:  fmt.Sprintf("Thesis submission deadline, one week before the defense on %s", input.DeadlineDate.Format("2006-01-02")),
				Location:     input.Location,
				DeadlineType: model.DeadlineSubmission,
				DeadlineDate: submissionDate,
				IsActive:     true,
				IsGlobal:     input.IsGlobal,
				CreatedBy:    input.CreatedBy,
			},
			model.Deadline{
				Title:        fmt.Sprintf("Review deadline for %s", input.Title),
				Description:  fmt.Sprintf("Review completion deadline, two days before the defense on %s", input.DeadlineDate.Format("2006-01-02")),
				Location:     input.Location,
				DeadlineType: model.DeadlineReview,
				DeadlineDate: reviewDate,
				IsActive:     true,
				IsGlobal:     input.IsGlobal,
				CreatedBy:    input.CreatedBy,
			},
		)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// DeactivateExpired marks active deadlines whose date has passed as
// inactive. Returns the number of rows updated.
func (s *DeadlineService) DeactivateExpired() (int64, error) {
	result := s.db.Model(&model.Deadline{}).
		Where("is_active = ? AND deadline_date < ?", true, time.Now()).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
