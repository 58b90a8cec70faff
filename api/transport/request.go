package transport

// CustomTaskRequest is the add-custom-task payload. Category and phase are
// fixed server-side (personal/general).
type CustomTaskRequest struct {
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
}

// TaskUpdateRequest is a partial task update; absent fields stay untouched.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Phase       *string `json:"phase"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

// ProfileUpdateRequest updates the visa-relevant profile signals. Date
// fields are ISO calendar dates; empty strings clear the field.
type ProfileUpdateRequest struct {
	FullName         *string `json:"full_name"`
	Email            *string `json:"email"`
	VisaType         *string `json:"visa_type"`
	EmploymentStatus *string `json:"employment_status"`
	OPTActive        *bool   `json:"opt_active"`
	STEMOPTActive    *bool   `json:"stem_opt_active"`
	EntryDate        *string `json:"entry_date"`
	GraduationDate   *string `json:"graduation_date"`
	TransferDate     *string `json:"transfer_date"`
}
