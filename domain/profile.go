package domain

import "time"

// Profile holds the visa-relevant signals for a student.
//
// Any of the optional fields may be absent; the compliance engine must
// tolerate an arbitrary subset being nil or empty.
type Profile struct {
	ID               string     `json:"id"`
	FullName         string     `json:"full_name,omitempty"`
	Email            string     `json:"email,omitempty"`
	VisaType         VisaType   `json:"visa_type,omitempty"`
	EmploymentStatus string     `json:"employment_status,omitempty"`
	OPTActive        bool       `json:"opt_active"`
	STEMOPTActive    bool       `json:"stem_opt_active"`
	EntryDate        *time.Time `json:"entry_date,omitempty"`
	GraduationDate   *time.Time `json:"graduation_date,omitempty"`
	TransferDate     *time.Time `json:"transfer_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NormalizedVisaType returns the profile's visa type, defaulting to F1
// when the field was never set.
func (p *Profile) NormalizedVisaType() VisaType {
	if p == nil || p.VisaType == "" {
		return VisaF1
	}
	return p.VisaType
}
