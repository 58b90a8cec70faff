// Package checklist carries the static, regulation-derived baseline task
// templates per visa phase.
//
// The tables are the single source of domain knowledge: adding a visa type
// or phase means adding a table entry, never touching the engine.
package checklist

import "github.com/visahub/backend/domain"

// knownVisaTypes is the closed set the provider is total over.
var knownVisaTypes = map[domain.VisaType]bool{
	domain.VisaF1:      true,
	domain.VisaCPT:     true,
	domain.VisaOPT:     true,
	domain.VisaSTEMOPT: true,
	domain.VisaJ1:      true,
	domain.VisaH1B:     true,
}

// baselines maps each phase to its ordered template list. Order is
// significant: it defines the default display order downstream.
var baselines = map[domain.Phase][]domain.BaselineItem{
	domain.PhaseF1: {
		{Title: "Verify I-20 validity and program end date", Description: "Check the program end date on your current I-20 and request an extension from your DSO before it lapses.", Category: domain.CategoryImmigration, Priority: domain.PriorityHigh, DueInDays: 14},
		{Title: "Confirm SEVIS fee payment receipt", Description: "Keep the I-901 SEVIS fee receipt with your immigration documents.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 30},
		{Title: "Maintain full-time enrollment", Description: "Enroll in a full course load each term; report any drop below full time to your DSO first.", Category: domain.CategoryAcademic, Priority: domain.PriorityHigh, DueInDays: 30},
		{Title: "Check passport validity (6+ months)", Description: "Your passport must remain valid at least six months into the future.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 60},
		{Title: "Report address changes within 10 days", Description: "Update your US address in the student portal so SEVIS stays current.", Category: domain.CategoryPersonal, Priority: domain.PriorityMedium, DueInDays: 10},
	},
	domain.PhaseCPT: {
		{Title: "Obtain CPT authorization on I-20", Description: "CPT must be authorized by your DSO and printed on page 2 of your I-20 before the first day of work.", Category: domain.CategoryEmployment, Priority: domain.PriorityHigh, DueInDays: 14},
		{Title: "File employment offer letter with DSO", Description: "The offer letter must state the position, dates and hours per week.", Category: domain.CategoryEmployment, Priority: domain.PriorityHigh, DueInDays: 14},
		{Title: "Confirm CPT course registration", Description: "Register for the internship/practicum course tied to your CPT authorization.", Category: domain.CategoryAcademic, Priority: domain.PriorityMedium, DueInDays: 21},
	},
	domain.PhaseOPT: {
		{Title: "File Form I-765 with USCIS", Description: "Apply up to 90 days before your program end date and no later than 60 days after; include the OPT-recommended I-20 from your DSO.", Category: domain.CategoryImmigration, Priority: domain.PriorityHigh, DueInDays: 30},
		{Title: "Keep EAD card accessible", Description: "Do not begin work before the start date printed on the EAD.", Category: domain.CategoryEmployment, Priority: domain.PriorityHigh, DueInDays: 45},
		{Title: "Report employment in SEVP portal", Description: "Report employer name, address and start date within 10 days of any change.", Category: domain.CategoryEmployment, Priority: domain.PriorityHigh, DueInDays: 10},
		{Title: "Track 90-day unemployment limit", Description: "Aggregate unemployment over 90 days ends OPT status.", Category: domain.CategoryEmployment, Priority: domain.PriorityMedium, DueInDays: 30},
	},
	domain.PhaseSTEMOPT: {
		{Title: "Submit Form I-983 training plan", Description: "Your employer must complete and sign the I-983 before the STEM extension filing.", Category: domain.CategoryEmployment, Priority: domain.PriorityHigh, DueInDays: 21},
		{Title: "Verify employer E-Verify enrollment", Description: "STEM OPT employment is only valid with an E-Verify enrolled employer.", Category: domain.CategoryEmployment, Priority: domain.PriorityHigh, DueInDays: 21},
		{Title: "Schedule 12-month self-evaluation", Description: "The signed evaluation is due to your DSO within 10 days of each reporting milestone.", Category: domain.CategoryEmployment, Priority: domain.PriorityMedium, DueInDays: 60},
		{Title: "Track 150-day unemployment limit", Description: "STEM OPT extends the aggregate unemployment allowance to 150 days.", Category: domain.CategoryEmployment, Priority: domain.PriorityMedium, DueInDays: 30},
	},
	domain.PhaseJ1: {
		{Title: "Verify DS-2019 validity", Description: "Check the program dates on your DS-2019 and contact your sponsor before expiry.", Category: domain.CategoryImmigration, Priority: domain.PriorityHigh, DueInDays: 14},
		{Title: "Maintain required health insurance", Description: "J-1 regulations require insurance meeting sponsor minimums for you and any J-2 dependents.", Category: domain.CategoryFinancial, Priority: domain.PriorityHigh, DueInDays: 30},
		{Title: "Review two-year home residency requirement", Description: "Determine whether 212(e) applies to your program and country of residence.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 90},
	},
	domain.PhaseH1B: {
		{Title: "Keep I-797 approval notice accessible", Description: "Carry a copy of your approval notice with your other status documents.", Category: domain.CategoryImmigration, Priority: domain.PriorityHigh, DueInDays: 14},
		{Title: "Retain certified LCA copy", Description: "Your employer must provide the certified Labor Condition Application for your records.", Category: domain.CategoryEmployment, Priority: domain.PriorityMedium, DueInDays: 30},
		{Title: "Report material job changes", Description: "Role, location or hour changes may require an amended petition before they take effect.", Category: domain.CategoryEmployment, Priority: domain.PriorityMedium, DueInDays: 30},
	},
	domain.PhaseGeneral: {
		{Title: "Keep passport copy on file", Description: "Store a copy of your passport identity page somewhere safe.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 30},
		{Title: "Keep visa stamp copy on file", Description: "Store a copy of your current visa stamp with your records.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 30},
	},
}

// genericFallback is returned for visa types outside the known set.
var genericFallback = []domain.BaselineItem{
	{Title: "Keep passport copy on file", Description: "Store a copy of your passport identity page somewhere safe.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 30},
	{Title: "Keep visa stamp copy on file", Description: "Store a copy of your current visa stamp with your records.", Category: domain.CategoryImmigration, Priority: domain.PriorityMedium, DueInDays: 30},
}

// Baseline returns the ordered template list for the given visa type and
// phase. Unknown visa types map to the generic two-item fallback rather
// than an empty list. The returned slice is a copy with the phase stamped
// on each item; callers may mutate it freely.
func Baseline(visaType domain.VisaType, phase domain.Phase) []domain.BaselineItem {
	if !knownVisaTypes[visaType] {
		return stamp(genericFallback, domain.PhaseGeneral)
	}
	return stamp(baselines[phase], phase)
}

func stamp(items []domain.BaselineItem, phase domain.Phase) []domain.BaselineItem {
	out := make([]domain.BaselineItem, len(items))
	for i, item := range items {
		item.Phase = phase
		out[i] = item
	}
	return out
}
