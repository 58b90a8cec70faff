package domain

import "time"

// VisaType is the visa classification a task was generated under.
type VisaType string

const (
	VisaF1      VisaType = "F1"
	VisaCPT     VisaType = "CPT"
	VisaOPT     VisaType = "OPT"
	VisaSTEMOPT VisaType = "STEM_OPT"
	VisaJ1      VisaType = "J1"
	VisaH1B     VisaType = "H1B"
)

// Phase is the visa-lifecycle stage a task belongs to.
type Phase string

const (
	PhaseF1      Phase = "F1"
	PhaseCPT     Phase = "CPT"
	PhaseOPT     Phase = "OPT"
	PhaseSTEMOPT Phase = "STEM_OPT"
	PhaseJ1      Phase = "J1"
	PhaseH1B     Phase = "H1B"
	PhaseGeneral Phase = "general"
)

// Category classifies what a compliance task is about.
type Category string

const (
	CategoryImmigration Category = "immigration"
	CategoryEducation   Category = "education"
	CategoryEmployment  Category = "employment"
	CategoryPersonal    Category = "personal"
	CategoryFinancial   Category = "financial"
	CategoryAcademic    Category = "academic"
	CategoryOther       Category = "other"
)

// Priority drives sort order and visual urgency downstream.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidCategories is the closed set of accepted task categories.
var ValidCategories = map[Category]bool{
	CategoryImmigration: true,
	CategoryEducation:   true,
	CategoryEmployment:  true,
	CategoryPersonal:    true,
	CategoryFinancial:   true,
	CategoryAcademic:    true,
	CategoryOther:       true,
}

// ValidPriorities is the closed set of accepted task priorities.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// Task represents a single required compliance action owned by a user.
//
// DueDate carries a calendar date only; nil means the task is open-ended.
// Tasks produced by checklist generation carry Generated=true and are
// deduplicated on (UserID, Title, Phase) when generation re-runs.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category"`
	Phase       Phase      `json:"phase"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	VisaType    VisaType   `json:"visa_type"`
	Generated   bool       `json:"generated"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BaselineItem is a regulation-derived task template not yet bound to a user.
type BaselineItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Phase       Phase    `json:"phase"`
	Priority    Priority `json:"priority"`
	DueInDays   int      `json:"due_in_days,omitempty"`
}
