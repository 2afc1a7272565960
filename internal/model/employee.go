package model

import "slices"

// Employee is a person who can receive PPE.
type Employee struct {
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	ShoeSize   string `json:"shoeSize,omitempty"`
	ShirtSize  string `json:"shirtSize,omitempty"`
	PantSize   string `json:"pantSize,omitempty"`
	HelmetSize string `json:"helmetSize,omitempty"`
}

// Roster lists the parties items can be issued to.
type Roster struct {
	Employees []Employee `json:"employees"`
	Sites     []string   `json:"sites"`
	Superiors []string   `json:"superiors"`
}

// Clone returns a deep copy of the roster.
func (r Roster) Clone() Roster {
	return Roster{
		Employees: slices.Clone(r.Employees),
		Sites:     slices.Clone(r.Sites),
		Superiors: slices.Clone(r.Superiors),
	}
}

// Employee returns the employee with the given name.
func (r *Roster) Employee(name string) (Employee, bool) {
	for _, e := range r.Employees {
		if e.Name == name {
			return e, true
		}
	}
	return Employee{}, false
}
