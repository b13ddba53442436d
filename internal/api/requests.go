package api

import (
	"encoding/json"
	"strings"

	"github.com/yanizio/formrelay/internal/submission"
)

// contactRequest is the POST /api/contact body.
type contactRequest struct {
	Name        string  `json:"name"         validate:"required,min=1,max=100"`
	Email       string  `json:"email"        validate:"required,max=254,email"`
	Company     *string `json:"company"      validate:"omitempty,max=100"`
	ProjectType *string `json:"project_type" validate:"omitempty,max=50"`
	Budget      *string `json:"budget"       validate:"omitempty,max=50"`
	Message     string  `json:"message"      validate:"required,min=1,max=2000"`
}

// UnmarshalJSON also accepts the camelCase "projectType" key.  The
// snake_case key wins when both are present.
func (c *contactRequest) UnmarshalJSON(b []byte) error {
	type plain contactRequest
	var aux struct {
		plain
		ProjectTypeCamel *string `json:"projectType"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = contactRequest(aux.plain)
	if c.ProjectType == nil {
		c.ProjectType = aux.ProjectTypeCamel
	}
	return nil
}

func (c *contactRequest) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
}

func (c *contactRequest) fields() submission.ContactFields {
	return submission.ContactFields{
		Name:        c.Name,
		Email:       c.Email,
		Company:     c.Company,
		ProjectType: c.ProjectType,
		Budget:      c.Budget,
		Message:     c.Message,
	}
}

// waitlistRequest is the POST /api/ai-waitlist body.
type waitlistRequest struct {
	Name      string  `json:"name"      validate:"required,min=1,max=100"`
	Email     string  `json:"email"     validate:"required,max=254,email"`
	Interests *string `json:"interests" validate:"omitempty,max=500"`
}

func (w *waitlistRequest) Normalize() {
	w.Name = strings.TrimSpace(w.Name)
	w.Email = strings.TrimSpace(w.Email)
}

func (w *waitlistRequest) fields() submission.WaitlistFields {
	return submission.WaitlistFields{Name: w.Name, Email: w.Email, Interests: w.Interests}
}
