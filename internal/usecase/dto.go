package usecase

import "github.com/blackbirdmedia/lead-pipeline/internal/entity"

type SubmitLeadOutput struct {
	Message       string                    `json:"message"`
	Details       []entity.SubmissionResult `json:"details"`
	PhoneStripped bool                      `json:"phone_stripped"`
	Delivered     bool                      `json:"-"`
	Succeeded     []string                  `json:"-"`
	Failed        []string                  `json:"-"`
	Email         entity.ValidationOutcome  `json:"-"`
	Phone         entity.ValidationOutcome  `json:"-"`
}
