package domain

// Engineer is a directory-resident identity eligible for assignment. The
// dispatch core never creates or mutates engineers; they are read-only
// references owned by the directory.
type Engineer struct {
	ID             int
	Name           string
	Unit           string
	Email          string
	Attendance     string
	YearsOfService int
}
