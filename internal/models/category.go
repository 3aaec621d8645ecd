package models

// Category is one tag out of a fixed, closed set of document types.
type Category string

const (
	CategoryExamination Category = "Examination"
	CategoryResult      Category = "Result"
	CategoryAdmission   Category = "Admission"
	CategoryFeeNotice   Category = "Fee Notice"
	CategoryCalendar    Category = "Academic Calendar"
	CategoryDates       Category = "Important Dates"
	CategoryUniform     Category = "Uniform/Dress Code"
	CategoryAssignment  Category = "Assignment/Project"
	CategoryInternship  Category = "Internship/Placement"
	CategoryEvent       Category = "Event"
	CategoryGeneral     Category = "General Notice"
)

// AllCategories returns every category in priority order: most specific
// first, General Notice last. Ties during keyword scoring are broken by
// position in this slice, so the order is part of the contract.
func AllCategories() []Category {
	return []Category{
		CategoryExamination,
		CategoryResult,
		CategoryAdmission,
		CategoryFeeNotice,
		CategoryCalendar,
		CategoryDates,
		CategoryUniform,
		CategoryAssignment,
		CategoryInternship,
		CategoryEvent,
		CategoryGeneral,
	}
}
